package tui

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/mmcdole/reel/internal/domain"
	"github.com/mmcdole/reel/internal/tui/styles"
)

// Syncer runs a full catalog sync and reports per-category progress
type Syncer interface {
	SetObserver(o domain.SyncObserver)
	Sync(ctx context.Context) error
}

// syncProgressMsg carries the latest running total
type syncProgressMsg SyncStatus

// syncDoneMsg signals that the sync returned, with its final total
type syncDoneMsg struct {
	Status SyncStatus
	Err    error
}

type syncKeyMap struct {
	Quit key.Binding
}

func defaultSyncKeyMap() syncKeyMap {
	return syncKeyMap{
		Quit: key.NewBinding(
			key.WithKeys("q", "esc", "ctrl+c"),
			key.WithHelp("q", "cancel"),
		),
	}
}

// SyncModel is the Bubble Tea model shown while a sync runs
type SyncModel struct {
	spinner spinner.Model
	bar     progress.Model
	keys    syncKeyMap

	progressCh <-chan SyncStatus
	doneCh     <-chan syncDoneMsg
	cancel     context.CancelFunc

	status   SyncStatus
	done     bool
	canceled bool
	err      error
}

// NewSyncModel creates a model fed by the given channels. cancel is called
// when the user quits before the sync finishes.
func NewSyncModel(progressCh <-chan SyncStatus, doneCh <-chan syncDoneMsg, cancel context.CancelFunc) SyncModel {
	s := spinner.New(
		spinner.WithSpinner(spinner.Dot),
		spinner.WithStyle(styles.SpinnerStyle),
	)
	bar := progress.New(
		progress.WithSolidFill(string(styles.ReelAmber)),
		progress.WithWidth(40),
	)
	return SyncModel{
		spinner:    s,
		bar:        bar,
		keys:       defaultSyncKeyMap(),
		progressCh: progressCh,
		doneCh:     doneCh,
		cancel:     cancel,
	}
}

// Init starts the spinner and the channel listeners
func (m SyncModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, waitForProgress(m.progressCh), waitForDone(m.doneCh))
}

// Update handles progress, completion and key messages
func (m SyncModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Quit) && !m.done {
			m.canceled = true
			if m.cancel != nil {
				m.cancel()
			}
		}
		return m, nil

	case syncProgressMsg:
		m.status = SyncStatus(msg)
		return m, waitForProgress(m.progressCh)

	case syncDoneMsg:
		m.done = true
		m.status = msg.Status
		m.err = msg.Err
		return m, tea.Quit

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

// View renders the current sync state
func (m SyncModel) View() string {
	var b strings.Builder
	st := m.status

	switch {
	case m.done && m.err != nil:
		b.WriteString(styles.ErrorStyle.Render("Sync failed: " + m.err.Error()))
	case m.done:
		b.WriteString(styles.SuccessStyle.Render(fmt.Sprintf("Synced %d categories, %d movies", st.Total, st.Movies)))
	case m.canceled:
		b.WriteString(m.spinner.View() + " " + styles.DimStyle.Render("Canceling..."))
	case st.Total == 0:
		b.WriteString(m.spinner.View() + " Fetching categories...")
	default:
		b.WriteString(m.spinner.View() + " " + styles.TitleStyle.Render(styles.Truncate(st.Current, 40)))
		b.WriteString("\n")
		b.WriteString(m.bar.ViewAs(float64(st.Loaded) / float64(st.Total)))
		b.WriteString(styles.DimStyle.Render(fmt.Sprintf("  %d/%d categories, %d movies", st.Loaded, st.Total, st.Movies)))
	}

	if len(st.Skipped) > 0 {
		b.WriteString("\n")
		b.WriteString(styles.ErrorStyle.Render(fmt.Sprintf("%d skipped: %s", len(st.Skipped), strings.Join(st.Skipped, ", "))))
	}

	if !m.done {
		b.WriteString("\n")
		b.WriteString(styles.HelpKeyStyle.Render(m.keys.Quit.Help().Key) + " " + styles.HelpDescStyle.Render(m.keys.Quit.Help().Desc))
	}
	return b.String() + "\n"
}

// Err returns the sync error once done
func (m SyncModel) Err() error { return m.err }

func waitForProgress(ch <-chan SyncStatus) tea.Cmd {
	return func() tea.Msg {
		p, ok := <-ch
		if !ok {
			return nil
		}
		return syncProgressMsg(p)
	}
}

func waitForDone(ch <-chan syncDoneMsg) tea.Cmd {
	return func() tea.Msg {
		return <-ch
	}
}

// RunSync runs s with an interactive progress view on out.
// It returns the sync's own error.
func RunSync(ctx context.Context, s Syncer, out io.Writer) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	progressCh := make(chan SyncStatus, 1)
	doneCh := make(chan syncDoneMsg, 1)

	obs := NewChannelObserver(progressCh)
	s.SetObserver(obs)
	defer s.SetObserver(nil)

	finished := make(chan struct{})
	go func() {
		defer close(finished)
		err := s.Sync(ctx)
		close(progressCh)
		doneCh <- syncDoneMsg{Status: obs.Status(), Err: err}
	}()

	final, err := tea.NewProgram(NewSyncModel(progressCh, doneCh, cancel), tea.WithOutput(out)).Run()

	// The view can exit early (killed, or a terminal error); never leave the sync running
	cancel()
	<-finished

	if err != nil {
		return fmt.Errorf("progress view: %w", err)
	}
	m := final.(SyncModel)
	if !m.done {
		return context.Canceled
	}
	return m.Err()
}

// PlainObserver writes one line per category to w, for non-interactive output
func PlainObserver(w io.Writer) domain.SyncObserver {
	return domain.ObserverFunc(func(p domain.SyncProgress) {
		if p.Err != nil {
			fmt.Fprintf(w, "[%d/%d] %s: skipped (%v)\n", p.Loaded, p.Total, p.CategoryName, p.Err)
			return
		}
		fmt.Fprintf(w, "[%d/%d] %s: %d movies\n", p.Loaded, p.Total, p.CategoryName, p.Movies)
	})
}
