// SPDX-License-Identifier: MIT
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"spectro/internal/source"
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFDF5")).
			Background(lipgloss.Color("#25A065")).
			Padding(0, 1).
			Bold(true)

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFDF5"))

	highlightStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#25A065")).
			Bold(true)
)

// ScreenType defines which screen is currently active
type ScreenType int

const (
	ListScreen ScreenType = iota
	ConfigScreen
)

var (
	sampleRateChoices = []float64{44100, 48000, 88200, 96000}
	bandChoices       = []int{32, 64, 128, 256, 512}
)

// DeviceListModel is the Bubble Tea model for browsing input devices
// and previewing analysis settings for the selected one.
type DeviceListModel struct {
	devices       []source.Device
	selectedIndex int
	viewport      viewport.Model
	ready         bool
	err           error
	activeScreen  ScreenType

	// Configuration options for the selected device
	sampleRateIndex int
	bandIndex       int
	configRow       int // 0 = sample rate, 1 = bands
}

// Init initializes the Bubble Tea model
func (m DeviceListModel) Init() tea.Cmd {
	return fetchDevices
}

// fetchDevices gets the available audio devices
func fetchDevices() tea.Msg {
	devices, err := source.GetDevices()
	if err != nil {
		return errMsg{err}
	}
	return devicesMsg{devices}
}

type devicesMsg struct {
	devices []source.Device
}

type errMsg struct {
	err error
}

func (m DeviceListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var (
		cmd  tea.Cmd
		cmds []tea.Cmd
	)

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		if !m.ready {
			m.viewport = viewport.New(msg.Width, msg.Height-4)
			m.viewport.Style = lipgloss.NewStyle()
			m.ready = true
			if len(m.devices) > 0 {
				m.viewport.SetContent(m.renderDevices())
			}
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = msg.Height - 4
		}

	case devicesMsg:
		m.devices = msg.devices
		if m.ready {
			m.viewport.SetContent(m.renderDevices())
		}

	case errMsg:
		m.err = msg.err

	case tea.KeyMsg:
		if key.Matches(msg, key.NewBinding(key.WithKeys("q", "ctrl+c"))) {
			return m, tea.Quit
		}

		if m.activeScreen == ListScreen {
			switch {
			case key.Matches(msg, key.NewBinding(key.WithKeys("up", "k"))):
				if m.selectedIndex > 0 {
					m.selectedIndex--
					m.viewport.SetContent(m.renderDevices())
				}

			case key.Matches(msg, key.NewBinding(key.WithKeys("down", "j"))):
				if m.selectedIndex < len(m.devices)-1 {
					m.selectedIndex++
					m.viewport.SetContent(m.renderDevices())
				}

			case key.Matches(msg, key.NewBinding(key.WithKeys("enter"))):
				if len(m.devices) > 0 {
					m.activeScreen = ConfigScreen
					m.configRow = 0
					m.sampleRateIndex = 0
					def := m.devices[m.selectedIndex].DefaultSampleRate
					for i, rate := range sampleRateChoices {
						if rate == def {
							m.sampleRateIndex = i
							break
						}
					}
					m.viewport.SetContent(m.renderDeviceConfig())
				}
			}
		} else {
			switch {
			case key.Matches(msg, key.NewBinding(key.WithKeys("esc"))):
				m.activeScreen = ListScreen
				m.viewport.SetContent(m.renderDevices())

			case key.Matches(msg, key.NewBinding(key.WithKeys("up", "k"))):
				if m.configRow > 0 {
					m.configRow--
					m.viewport.SetContent(m.renderDeviceConfig())
				}

			case key.Matches(msg, key.NewBinding(key.WithKeys("down", "j"))):
				if m.configRow < 1 {
					m.configRow++
					m.viewport.SetContent(m.renderDeviceConfig())
				}

			case key.Matches(msg, key.NewBinding(key.WithKeys("left", "h"))):
				m.adjust(-1)
				m.viewport.SetContent(m.renderDeviceConfig())

			case key.Matches(msg, key.NewBinding(key.WithKeys("right", "l"))):
				m.adjust(1)
				m.viewport.SetContent(m.renderDeviceConfig())
			}
		}
	}

	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// adjust moves the value on the active config row by delta steps.
func (m *DeviceListModel) adjust(delta int) {
	switch m.configRow {
	case 0:
		m.sampleRateIndex = clampIndex(m.sampleRateIndex+delta, len(sampleRateChoices))
	case 1:
		m.bandIndex = clampIndex(m.bandIndex+delta, len(bandChoices))
	}
}

func clampIndex(i, n int) int {
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}

// View renders the UI
func (m DeviceListModel) View() string {
	if !m.ready {
		return "Initializing..."
	}

	if m.err != nil {
		return fmt.Sprintf("Error: %v\n\nPress any key to exit.", m.err)
	}

	var title, help string

	if m.activeScreen == ListScreen {
		title = titleStyle.Render("Audio Device List")
		help = infoStyle.Render("↑/↓: Navigate • Enter: Configure • q: Quit")
	} else {
		title = titleStyle.Render("Analysis Settings")
		help = infoStyle.Render("↑/↓: Row • ←/→: Change Value • Esc: Back • q: Quit")
	}

	return fmt.Sprintf("%s\n\n%s\n\n%s", title, m.viewport.View(), help)
}

// renderDevices formats the device list
func (m DeviceListModel) renderDevices() string {
	var sb strings.Builder

	if len(m.devices) == 0 {
		return "No audio devices found."
	}

	for i, device := range m.devices {
		deviceType := ""
		if device.MaxInputChannels > 0 && device.MaxOutputChannels > 0 {
			deviceType = "Input/Output"
		} else if device.MaxInputChannels > 0 {
			deviceType = "Input"
		} else if device.MaxOutputChannels > 0 {
			deviceType = "Output"
		}

		deviceInfo := fmt.Sprintf("[%d] %s (%s)\n",
			device.ID, device.Name, deviceType)
		deviceInfo += fmt.Sprintf("    Input channels: %d, Output channels: %d\n",
			device.MaxInputChannels, device.MaxOutputChannels)
		deviceInfo += fmt.Sprintf("    Default sample rate: %.0f Hz\n",
			device.DefaultSampleRate)

		if i == m.selectedIndex {
			deviceInfo = highlightStyle.Render(deviceInfo)
		}

		sb.WriteString(deviceInfo)
		sb.WriteString("\n")
	}

	return sb.String()
}

// renderDeviceConfig formats the settings screen for the selected device.
func (m DeviceListModel) renderDeviceConfig() string {
	var sb strings.Builder
	device := m.devices[m.selectedIndex]

	sb.WriteString(fmt.Sprintf("Device: %s\n\n", device.Name))

	rows := []string{
		fmt.Sprintf("Sample rate:  %.0f Hz", sampleRateChoices[m.sampleRateIndex]),
		fmt.Sprintf("Bands:        %d (FFT size %d)",
			bandChoices[m.bandIndex], 2*bandChoices[m.bandIndex]-2),
	}
	for i, row := range rows {
		marker := "  "
		if i == m.configRow {
			marker = "▶ "
		}
		line := marker + row + "\n"
		if i == m.configRow {
			line = highlightStyle.Render(line)
		}
		sb.WriteString(line)
	}

	sb.WriteString(fmt.Sprintf("\nRun with: spectro --device %d --sample-rate %.0f --bands %d\n",
		device.ID, sampleRateChoices[m.sampleRateIndex], bandChoices[m.bandIndex]))

	return sb.String()
}

// NewDeviceListModel creates a new device list model
func NewDeviceListModel() DeviceListModel {
	return DeviceListModel{
		selectedIndex: 0,
		activeScreen:  ListScreen,
	}
}

// StartDeviceListUI launches the Bubble Tea TUI for listing devices
func StartDeviceListUI() error {
	p := tea.NewProgram(
		NewDeviceListModel(),
		tea.WithAltScreen(),
	)
	_, err := p.Run()
	return err
}
