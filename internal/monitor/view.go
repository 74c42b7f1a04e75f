package monitor

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/rileyhilliard/netbar/internal/format"
	"github.com/rileyhilliard/netbar/internal/telemetry"
)

const (
	defaultWidth = 80
	minWidth     = 40
	graphHeight  = 2
	labelWidth   = 10
)

var targetLabels = map[telemetry.Target]string{
	telemetry.TargetInternet: "Internet",
	telemetry.TargetRouter:   "Router",
	telemetry.TargetDNS:      "DNS",
}

// renderDashboard renders the complete dashboard view.
func (m Model) renderDashboard() string {
	width := m.contentWidth()

	sections := []string{
		m.renderHeader(),
		m.renderThroughput(width),
		m.renderWifi(width),
		m.renderReachability(width),
	}
	if m.tester != nil {
		sections = append(sections, m.renderSpeedTest(width))
	}
	sections = append(sections, m.renderSummary(width), m.renderFooter())

	return strings.Join(sections, "\n")
}

func (m Model) contentWidth() int {
	if m.width == 0 {
		return defaultWidth
	}
	if m.width < minWidth {
		return minWidth
	}
	return m.width
}

// renderHeader renders the title line with link state and sample age.
func (m Model) renderHeader() string {
	var updateText string
	switch secs := m.SecondsSinceUpdate(); secs {
	case -1:
		updateText = "waiting for first sample"
	case 0:
		updateText = "updated just now"
	default:
		updateText = fmt.Sprintf("updated %ds ago", secs)
	}

	iface := m.snap.Interface
	if iface == "" {
		iface = "no interface"
	}

	status := lipgloss.NewStyle().Foreground(ColorHealthy).Render(StatusOnline + " connected")
	if !m.snap.Connected {
		status = lipgloss.NewStyle().Foreground(ColorCritical).Render(StatusOffline + " offline")
	}

	title := lipgloss.NewStyle().
		Foreground(ColorAccent).
		Bold(true).
		Render("netbar monitor")

	sep := lipgloss.NewStyle().Foreground(ColorTextSecondary).Render(" | ")
	stats := lipgloss.NewStyle().
		Foreground(ColorTextSecondary).
		Render(fmt.Sprintf("every %s | %s", m.snap.Interval, updateText))

	return HeaderStyle.Render(title + sep + iface + sep + status + sep + stats)
}

// renderThroughput renders download/upload graphs and the traffic totals.
func (m Model) renderThroughput(width int) string {
	display := m.settings.Display
	down := format.SpeedString(m.snap.Speed.Download, display.UnitType, display.FixedUnit)
	up := format.SpeedString(m.snap.Speed.Upload, display.UnitType, display.FixedUnit)

	graphWidth := width - 4 - labelWidth
	if graphWidth < 10 {
		graphWidth = 10
	}

	hist := m.snap.History
	scale := AutoScale(append(append([]float64{}, hist.Download...), hist.Upload...))

	lines := []string{SectionHeader("Throughput", "↓ "+down+"  ↑ "+up, width)}
	lines = append(lines, m.graphLines("Download", hist.Download, graphWidth, scale, ColorDownload, width)...)
	lines = append(lines, m.graphLines("Upload", hist.Upload, graphWidth, scale, ColorUpload, width)...)

	totals := m.snap.Totals
	since := "never reset"
	if !totals.Since.IsZero() {
		since = "since " + humanize.RelTime(totals.Since, m.clock.Now(), "ago", "from now")
	}
	lines = append(lines, SectionContentLine(
		LabelStyle.Render(padLabel("Total"))+
			ValueStyle.Render("↓ "+format.BytesString(totals.Download)+"  ↑ "+format.BytesString(totals.Upload))+
			MutedStyle.Render("  "+since),
		width))

	lines = append(lines, SectionFooter(width))
	return strings.Join(lines, "\n")
}

func (m Model) graphLines(label string, data []float64, graphWidth int, scale Scale, color lipgloss.Color, width int) []string {
	graph := strings.Split(RenderBrailleGraph(data, graphWidth, graphHeight, scale, color), "\n")
	lines := make([]string, 0, len(graph))
	for i, row := range graph {
		l := padLabel("")
		if i == 0 {
			l = padLabel(label)
		}
		lines = append(lines, SectionContentLine(LabelStyle.Render(l)+row, width))
	}
	return lines
}

// renderWifi renders the wireless link details and signal history.
func (m Model) renderWifi(width int) string {
	stats := m.snap.Stats
	if stats.SSID == "" {
		return strings.Join([]string{
			SectionHeader("Wi-Fi", "", width),
			SectionContentLine(MutedStyle.Render("Not connected to a wireless network"), width),
			SectionFooter(width),
		}, "\n")
	}

	signal := lipgloss.NewStyle().Foreground(SignalColor(stats.RSSI)).Render(fmt.Sprintf("%d dBm", stats.RSSI))
	quality := fmt.Sprintf("%.0f%%", SignalQuality(stats.RSSI))

	band := stats.Band
	if stats.Channel > 0 {
		band = fmt.Sprintf("%s ch %d", band, stats.Channel)
	}

	sparkWidth := width - 4 - labelWidth - 16
	if sparkWidth < 8 {
		sparkWidth = 8
	}
	signalHist := toFloats(m.snap.History.Signal)
	for i, v := range signalHist {
		signalHist[i] = SignalQuality(int(v))
	}
	spark := RenderSparkline(signalHist, sparkWidth, Scale{Min: 0, Max: 100}, SignalColor(stats.RSSI))

	lines := []string{
		SectionHeader("Wi-Fi", stats.SSID, width),
		SectionContentLine(m.field("BSSID", stats.BSSID), width),
		SectionContentLine(m.field("Band", band), width),
		SectionContentLine(m.field("Tx rate", fmt.Sprintf("%.0f Mbps", stats.TxRate)), width),
		SectionContentLine(LabelStyle.Render(padLabel("Signal"))+signal+MutedStyle.Render(" "+quality+" ")+spark, width),
		SectionContentLine(m.field("Noise", fmt.Sprintf("%d dBm", stats.Noise)), width),
		SectionFooter(width),
	}
	return strings.Join(lines, "\n")
}

// renderReachability renders one row per probe target.
func (m Model) renderReachability(width int) string {
	lines := []string{SectionHeader("Reachability", "", width)}

	sparkWidth := width - 4 - labelWidth - 48
	if sparkWidth < 8 {
		sparkWidth = 8
	}

	for _, target := range telemetry.Targets {
		r := m.snap.Stats.Reachability(target)
		host := m.targetHost(target)

		var row string
		if host == "" {
			row = LabelStyle.Render(padLabel(targetLabels[target])) + MutedStyle.Render("not found")
			lines = append(lines, SectionContentLine(row, width))
			continue
		}

		ping := format.Ping(format.Reading{Ping: r.Ping, Loss: r.Loss})
		row = LabelStyle.Render(padLabel(targetLabels[target])) +
			MutedStyle.Render(fmt.Sprintf("%-16s", host)) +
			lipgloss.NewStyle().Foreground(LatencyColor(r.Ping, r.Loss)).Width(7).Render(ping) +
			MutedStyle.Render(fmt.Sprintf(" ±%-6.1f", r.Jitter)) +
			lipgloss.NewStyle().Foreground(LossColor(r.Loss)).Width(6).Render(fmt.Sprintf("%.0f%%", r.Loss)) +
			" " + RenderSparkline(m.snap.History.Ping(target), sparkWidth, AutoScale(m.snap.History.Ping(target)), LatencyColor(r.Ping, r.Loss))
		lines = append(lines, SectionContentLine(row, width))
	}

	lines = append(lines, SectionFooter(width))
	return strings.Join(lines, "\n")
}

func (m Model) targetHost(target telemetry.Target) string {
	switch target {
	case telemetry.TargetRouter:
		return m.snap.Stats.Gateway
	case telemetry.TargetDNS:
		return m.snap.Stats.DNSServer
	default:
		return m.settings.Probe.InternetHost
	}
}

// renderSpeedTest renders the on-demand speed test state.
func (m Model) renderSpeedTest(width int) string {
	res := m.speed

	status := ""
	if res.Testing {
		status = SpinnerFrames[m.spinnerFrame%len(SpinnerFrames)] + fmt.Sprintf(" %ds left", int(res.Remaining.Seconds()))
	}

	lines := []string{SectionHeader("Speed test", status, width)}

	if res.HasDownload {
		lines = append(lines, SectionContentLine(m.field("Download", fmt.Sprintf("%.2f Mbps", res.Download)), width))
	}
	if res.HasUpload {
		lines = append(lines, SectionContentLine(m.field("Upload", fmt.Sprintf("%.2f Mbps", res.Upload)), width))
	}
	if res.Responsiveness != "" {
		lines = append(lines, SectionContentLine(m.field("Response", res.Responsiveness), width))
	}
	if res.Err != "" {
		lines = append(lines, SectionContentLine(ErrorStyle.Render(res.Err), width))
	}
	if !res.Testing && !res.HasSpeed() && res.Err == "" {
		lines = append(lines, SectionContentLine(MutedStyle.Render("Press t to run a speed test"), width))
	}

	lines = append(lines, SectionFooter(width))
	return strings.Join(lines, "\n")
}

// renderSummary previews the status line as the menu bar shows it.
func (m Model) renderSummary(width int) string {
	lines := []string{SectionHeader("Menu bar", "", width)}
	for _, l := range strings.Split(m.snap.Summary, "\n") {
		lines = append(lines, SectionContentLine(ValueStyle.Render(l), width))
	}
	lines = append(lines, SectionFooter(width))
	return strings.Join(lines, "\n")
}

// renderFooter renders the keyboard help footer and any rejected change.
func (m Model) renderFooter() string {
	var hints []string
	for _, b := range keys.ShortHelp() {
		h := b.Help()
		hints = append(hints, h.Key+" "+h.Desc)
	}

	footer := FooterStyle.Render(strings.Join(hints, " | "))
	if m.notice != "" {
		footer += "\n" + ErrorStyle.Render(m.notice)
	}
	return footer
}

func (m Model) field(label, value string) string {
	return LabelStyle.Render(padLabel(label)) + ValueStyle.Render(value)
}

func padLabel(s string) string {
	return fmt.Sprintf("%-*s", labelWidth, s)
}
