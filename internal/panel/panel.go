// Package panel is the desktop control surface: a terminal UI showing
// the live snapshot with controls for layout, lock, and shutdown. The
// daemon runs headless without it.
package panel

import (
	"context"
	"fmt"
	"net"
	"strings"
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Crypto90/nowplayingd/internal/config"
	"github.com/Crypto90/nowplayingd/internal/domain"
	"github.com/Crypto90/nowplayingd/internal/settings"
	"go.uber.org/zap"
)

// Panel runs the control UI as a background bubbletea program.
type Panel struct {
	logger   *zap.Logger
	snapshot domain.SnapshotReader
	settings *settings.Manager
	urls     []string

	// OnQuit is invoked when the user quits the panel; main wires it to
	// the application shutdowner so closing the panel stops the daemon.
	OnQuit func()

	prog     *tea.Program
	stopping atomic.Bool
}

// NewPanel creates the control panel
func NewPanel(
	logger *zap.Logger,
	cfg *config.AppConfig,
	snap domain.SnapshotReader,
	mgr *settings.Manager,
) *Panel {
	return &Panel{
		logger:   logger,
		snapshot: snap,
		settings: mgr,
		urls:     widgetURLs(cfg.Addr()),
	}
}

// Start launches the UI in a goroutine
func (p *Panel) Start(ctx context.Context) error {
	p.prog = tea.NewProgram(newModel(p.snapshot, p.settings, p.urls), tea.WithAltScreen())

	go func() {
		if _, err := p.prog.Run(); err != nil {
			p.logger.Error("Control panel terminated", zap.Error(err))
		}
		if !p.stopping.Load() && p.OnQuit != nil {
			p.OnQuit()
		}
	}()
	return nil
}

// Stop quits the UI
func (p *Panel) Stop(ctx context.Context) error {
	p.stopping.Store(true)
	if p.prog != nil {
		p.prog.Quit()
	}
	return nil
}

// widgetURLs builds the loopback and LAN URLs to paste into the OBS
// browser source.
func widgetURLs(addr string) []string {
	_, port, err := net.SplitHostPort(addr)
	if err != nil || port == "" {
		port = "5000"
	}

	urls := []string{fmt.Sprintf("http://127.0.0.1:%s", port)}
	if ip := localIP(); ip != "" {
		urls = append(urls, fmt.Sprintf("http://%s:%s", ip, port))
	}
	return urls
}

// localIP returns the first non-loopback IPv4 address, or empty.
func localIP() string {
	addrs, err := net.InterfaceAddrs()
	if err != nil {
		return ""
	}
	for _, addr := range addrs {
		ipNet, ok := addr.(*net.IPNet)
		if !ok || ipNet.IP.IsLoopback() {
			continue
		}
		if ip4 := ipNet.IP.To4(); ip4 != nil {
			return ip4.String()
		}
	}
	return ""
}

// tickMsg drives the 1 Hz refresh of the displayed snapshot
type tickMsg time.Time

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

type model struct {
	snapshot domain.SnapshotReader
	settings *settings.Manager
	urls     []string

	snap   domain.Snapshot
	prefs  domain.Settings
	width  int
	height int
}

func newModel(snap domain.SnapshotReader, mgr *settings.Manager, urls []string) model {
	return model{
		snapshot: snap,
		settings: mgr,
		urls:     urls,
		snap:     snap.Get(),
		prefs:    mgr.Get(),
	}
}

func (m model) Init() tea.Cmd {
	return tickCmd()
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "h":
			m.settings.SetLayout(domain.LayoutHorizontal)
			m.prefs = m.settings.Get()
		case "v":
			m.settings.SetLayout(domain.LayoutVertical)
			m.prefs = m.settings.Get()
		case "l":
			// Toggle: clear an active lock, otherwise lock to the app
			// currently shown in the snapshot.
			if m.prefs.LockedApp != "" {
				m.settings.SetLockedApp("")
			} else if app := domain.ShortAppID(m.snap.AppID); app != "" && app != "Unknown" {
				m.settings.SetLockedApp(app)
			}
			m.prefs = m.settings.Get()
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tickMsg:
		m.snap = m.snapshot.Get()
		m.prefs = m.settings.Get()
		return m, tickCmd()
	}

	return m, nil
}

func formatTime(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	s := int(seconds)
	return fmt.Sprintf("%02d:%02d", s/60, s%60)
}

func (m model) View() string {
	highlight := lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	white := lipgloss.NewStyle().Foreground(lipgloss.Color("15"))
	labelStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Bold(true)
	mutedStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("240"))

	borderStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("2")).
		Padding(1, 2)

	var content strings.Builder
	content.WriteString(highlight.Render("Now Playing Widget") + "\n\n")

	addLine := func(label, value string) {
		content.WriteString(fmt.Sprintf("%s %s\n", labelStyle.Render(label), value))
	}

	addLine("Title: ", m.snap.Title)
	addLine("Artist:", m.snap.Artist)
	addLine("App:   ", domain.ShortAppID(m.snap.AppID))
	addLine("Status:", string(m.snap.Status))

	if m.snap.Duration > 0 {
		barWidth := 32
		progress := m.snap.Position / m.snap.Duration
		if progress > 1 {
			progress = 1
		}
		filled := int(float64(barWidth) * progress)
		bar := highlight.Render(strings.Repeat("█", filled)) +
			white.Render(strings.Repeat("─", barWidth-filled))
		content.WriteString(fmt.Sprintf("\n%s %s/%s\n", bar,
			formatTime(m.snap.Position), formatTime(m.snap.Duration)))
	}

	content.WriteString("\n")
	addLine("Layout:", string(m.prefs.Layout))
	if m.prefs.LockedApp != "" {
		addLine("Lock:  ", m.prefs.LockedApp)
	} else {
		addLine("Lock:  ", mutedStyle.Render("none"))
	}

	content.WriteString("\n" + labelStyle.Render("Widget URLs:") + "\n")
	for _, url := range m.urls {
		content.WriteString("  " + url + "\n")
	}

	help := lipgloss.JoinHorizontal(
		lipgloss.Center,
		"Horizontal: "+highlight.Render("h"),
		"  Vertical: "+highlight.Render("v"),
		"  Lock: "+highlight.Render("l"),
		"  Quit: "+highlight.Render("q"),
	)

	full := lipgloss.JoinVertical(lipgloss.Center, borderStyle.Render(content.String()), "\n"+help)

	if m.width == 0 {
		return full
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, full)
}
