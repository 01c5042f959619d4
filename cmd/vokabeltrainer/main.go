package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/vokabeltrainer/vokabeltrainer/internal/config"
	"github.com/vokabeltrainer/vokabeltrainer/internal/store"
	"github.com/vokabeltrainer/vokabeltrainer/internal/trainer"
)

type view int

const (
	viewMenu view = iota
	viewAddGerman
	viewAddEnglish
	viewQuizSetup
	viewQuizQuestion
	viewQuizFeedback
	viewQuizResults
	viewList
	viewSessions
	viewImportInput
	viewImportLoading
	viewImportResult
)

// importResultMsg carries the result of an async word-list import
type importResultMsg struct {
	count int
	err   error
}

var menuItems = []string{
	"Vokabeln hinzufügen",
	"Quiz starten",
	"Alle Vokabeln anzeigen",
	"Lernverlauf",
	"Vokabeln importieren",
	"Beenden",
}

var bandLabels = map[string]string{
	trainer.BandUnpracticed: "Nicht geübt (0)",
	trainer.BandBeginner:    "Anfänger (1-9)",
	trainer.BandLearning:    "Lernend (10-19)",
	trainer.BandAdvanced:    "Fortgeschritten (20-29)",
	trainer.BandGood:        "Gut (30-39)",
	trainer.BandMaster:      "Meister (40+)",
}

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205")).
			MarginBottom(1)

	menuStyle = lipgloss.NewStyle().
			Padding(1, 2)

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("170")).
			Bold(true)

	normalStyle = lipgloss.NewStyle()

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)

	hintStyle = lipgloss.NewStyle().
			Faint(true)
)

type model struct {
	view   view
	cursor int

	trainer *trainer.Trainer
	rng     *rand.Rand

	input    textinput.Model
	spinner  spinner.Model
	progress progress.Model

	stats  trainer.Statistics
	notice string
	err    error

	vocables   []trainer.ScoredVocable
	listCursor int

	sessions []store.Session

	quiz     *trainer.Quiz
	feedback store.Result
	session  store.Session

	german   string
	addCount int

	imported int
}

func initialModel(tr *trainer.Trainer) (model, error) {
	stats, err := tr.Statistics()
	if err != nil {
		return model{}, err
	}

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	return model{
		view:     viewMenu,
		trainer:  tr,
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
		input:    textinput.New(),
		spinner:  s,
		progress: progress.New(progress.WithDefaultGradient(), progress.WithWidth(20), progress.WithoutPercentage()),
		stats:    stats,
	}, nil
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case importResultMsg:
		m.imported = msg.count
		m.err = msg.err
		m.view = viewImportResult
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		switch m.view {
		case viewMenu:
			return m.updateMenu(msg.String())
		case viewAddGerman, viewAddEnglish:
			return m.updateAdd(msg)
		case viewQuizSetup:
			return m.updateQuizSetup(msg)
		case viewQuizQuestion:
			return m.updateQuizQuestion(msg)
		case viewQuizFeedback:
			return m.updateQuizFeedback(msg.String())
		case viewList:
			return m.updateList(msg.String())
		case viewImportInput:
			return m.updateImportInput(msg)
		case viewQuizResults, viewSessions, viewImportResult:
			switch msg.String() {
			case "enter", "esc", "q":
				return m.returnToMenu(), nil
			}
		}
	}

	return m, nil
}

func (m model) updateMenu(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "q":
		return m, tea.Quit

	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}

	case "down", "j":
		if m.cursor < len(menuItems)-1 {
			m.cursor++
		}

	case "enter":
		return m.handleMenuSelection()

	default:
		// Digit shortcut selects the entry directly; anything else
		// leaves the menu untouched.
		if n, err := strconv.Atoi(key); err == nil && n >= 1 && n <= len(menuItems) {
			m.cursor = n - 1
			return m.handleMenuSelection()
		}
	}

	return m, nil
}

func (m model) handleMenuSelection() (tea.Model, tea.Cmd) {
	m.notice = ""
	m.err = nil

	switch m.cursor {
	case 0: // Vokabeln hinzufügen
		m.view = viewAddGerman
		m.german = ""
		m.addCount = 0
		m.input.Reset()
		m.input.Placeholder = "Deutsch"
		m.input.Focus()
		return m, textinput.Blink

	case 1: // Quiz starten
		if m.stats.Total == 0 {
			m.notice = "Keine Vokabeln vorhanden."
			return m, nil
		}
		m.view = viewQuizSetup
		m.input.Reset()
		m.input.Placeholder = "Anzahl der Fragen (leer = 1)"
		m.input.Focus()
		return m, textinput.Blink

	case 2: // Alle Vokabeln anzeigen
		vocables, err := m.trainer.WithScores()
		if err != nil {
			m.err = err
			return m, nil
		}
		m.vocables = vocables
		m.listCursor = 0
		m.view = viewList

	case 3: // Lernverlauf
		sessions, err := m.trainer.Sessions()
		if err != nil {
			m.err = err
			return m, nil
		}
		m.sessions = sessions
		m.view = viewSessions

	case 4: // Vokabeln importieren
		m.view = viewImportInput
		m.input.Reset()
		m.input.Placeholder = "Pfad zur Wortliste (PDF, DOCX oder TXT)"
		m.input.Focus()
		return m, textinput.Blink

	case 5: // Beenden
		return m, tea.Quit
	}

	return m, nil
}

func (m model) updateAdd(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		return m.returnToMenu(), nil

	case "enter":
		if m.view == viewAddGerman {
			m.german = m.input.Value()
			m.input.Reset()
			m.input.Placeholder = "Englisch"
			m.view = viewAddEnglish
			return m, nil
		}

		// Empty strings are accepted as-is on both sides.
		if _, err := m.trainer.Add(m.german, m.input.Value()); err != nil {
			m.err = err
		} else {
			m.addCount++
		}
		m.input.Reset()
		m.input.Placeholder = "Deutsch"
		m.view = viewAddGerman
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m model) updateQuizSetup(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		return m.returnToMenu(), nil

	case "enter":
		value := strings.TrimSpace(m.input.Value())
		count := 1
		if value != "" {
			n, err := strconv.Atoi(value)
			if err != nil || n <= 0 {
				m.err = errors.New("Ungültige Eingabe. Bitte gib eine positive Zahl ein.")
				m.input.Reset()
				return m, nil
			}
			count = n
		}

		quiz, err := m.trainer.NewQuiz(count, m.rng)
		if errors.Is(err, trainer.ErrNoVocables) {
			next := m.returnToMenu()
			next.notice = "Keine Vokabeln vorhanden."
			return next, nil
		}
		if err != nil {
			m.err = err
			return m, nil
		}

		m.quiz = quiz
		m.err = nil
		m.view = viewQuizQuestion
		m.input.Reset()
		m.input.Placeholder = "Antwort"
		m.input.Focus()
		return m, textinput.Blink
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m model) updateQuizQuestion(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		// Abandon the round; answered questions are already persisted.
		return m.returnToMenu(), nil

	case "enter":
		// The answer is compared exactly as typed: no trimming, no
		// case folding.
		result, err := m.quiz.Answer(m.input.Value())
		if err != nil {
			m.err = err
			return m, nil
		}
		m.feedback = result
		m.input.Reset()
		m.view = viewQuizFeedback
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m model) updateQuizFeedback(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "esc":
		return m.returnToMenu(), nil

	case "enter":
		if !m.quiz.Done() {
			m.view = viewQuizQuestion
			m.input.Focus()
			return m, textinput.Blink
		}

		session, err := m.quiz.Finish()
		if err != nil {
			m.err = err
		}
		m.session = session
		m.view = viewQuizResults
		return m, nil
	}

	return m, nil
}

func (m model) updateList(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "up", "k":
		if m.listCursor > 0 {
			m.listCursor--
		}

	case "down", "j":
		if m.listCursor < len(m.vocables)-1 {
			m.listCursor++
		}

	case "d":
		if len(m.vocables) == 0 {
			return m, nil
		}
		if err := m.trainer.Delete(m.vocables[m.listCursor].ID); err != nil {
			m.err = err
			return m, nil
		}
		vocables, err := m.trainer.WithScores()
		if err != nil {
			m.err = err
			return m, nil
		}
		m.vocables = vocables
		if m.listCursor >= len(m.vocables) && m.listCursor > 0 {
			m.listCursor--
		}

	case "enter", "esc", "q":
		return m.returnToMenu(), nil
	}

	return m, nil
}

func (m model) updateImportInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		return m.returnToMenu(), nil

	case "enter":
		path := m.input.Value()
		m.input.Reset()
		m.view = viewImportLoading
		m.err = nil
		importCmd := func() tea.Msg {
			count, err := m.trainer.Import(path)
			return importResultMsg{count: count, err: err}
		}
		return m, tea.Batch(importCmd, m.spinner.Tick)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// returnToMenu resets transient state and refreshes the dashboard.
func (m model) returnToMenu() model {
	m.view = viewMenu
	m.cursor = 0
	m.err = nil
	m.quiz = nil
	m.input.Reset()
	m.input.Blur()

	stats, err := m.trainer.Statistics()
	if err != nil {
		m.err = err
		return m
	}
	m.stats = stats
	return m
}

func (m model) View() string {
	switch m.view {
	case viewMenu:
		return m.renderMenu()
	case viewAddGerman, viewAddEnglish:
		return m.renderAdd()
	case viewQuizSetup:
		return m.renderQuizSetup()
	case viewQuizQuestion:
		return m.renderQuizQuestion()
	case viewQuizFeedback:
		return m.renderQuizFeedback()
	case viewQuizResults:
		return m.renderQuizResults()
	case viewList:
		return m.renderList()
	case viewSessions:
		return m.renderSessions()
	case viewImportInput:
		return m.renderImportInput()
	case viewImportLoading:
		return m.renderImportLoading()
	case viewImportResult:
		return m.renderImportResult()
	}
	return m.renderMenu()
}

func (m model) renderMenu() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render("Vokabeltrainer"))
	s.WriteString("\n\n")

	s.WriteString(m.renderStats())
	s.WriteString("\n")

	if m.notice != "" {
		s.WriteString(m.notice)
		s.WriteString("\n\n")
	}
	if m.err != nil {
		s.WriteString(errorStyle.Render(fmt.Sprintf("Fehler: %v", m.err)))
		s.WriteString("\n\n")
	}

	for i, item := range menuItems {
		line := fmt.Sprintf("%d) %s", i+1, item)
		if m.cursor == i {
			s.WriteString(selectedStyle.Render("> " + line))
		} else {
			s.WriteString(normalStyle.Render("  " + line))
		}
		s.WriteString("\n")
	}

	s.WriteString("\n")
	s.WriteString(hintStyle.Render("↑/↓ oder j/k navigieren, 1-6 wählt direkt, Enter bestätigt, q beendet"))

	return menuStyle.Render(s.String())
}

func (m model) renderStats() string {
	var s strings.Builder

	if m.stats.Total == 0 {
		s.WriteString("Keine Vokabeln vorhanden.\n")
		return s.String()
	}

	s.WriteString(fmt.Sprintf("Vokabeln gesamt: %d | Gesamtpunktzahl: %d (min %d, max %d)\n\n",
		m.stats.Total, m.stats.TotalScore, m.stats.MinScore, m.stats.MaxScore))

	maxCount := 0
	for _, band := range m.stats.Bands {
		if band.Count > maxCount {
			maxCount = band.Count
		}
	}

	for _, band := range m.stats.Bands {
		ratio := 0.0
		if maxCount > 0 {
			ratio = float64(band.Count) / float64(maxCount)
		}
		s.WriteString(fmt.Sprintf("%-24s %s %3d (%3d%%)\n",
			bandLabels[band.Key], m.progress.ViewAs(ratio), band.Count, band.Percentage))
	}

	return s.String()
}

func (m model) renderAdd() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render("Vokabeln hinzufügen"))
	s.WriteString("\n\n")

	if m.addCount > 0 {
		s.WriteString(successStyle.Render(fmt.Sprintf("✓ %d hinzugefügt", m.addCount)))
		s.WriteString("\n\n")
	}
	if m.err != nil {
		s.WriteString(errorStyle.Render(fmt.Sprintf("Fehler: %v", m.err)))
		s.WriteString("\n\n")
	}

	if m.view == viewAddGerman {
		s.WriteString("Deutsch:\n")
	} else {
		s.WriteString(fmt.Sprintf("Deutsch: %s\nEnglisch:\n", m.german))
	}
	s.WriteString(m.input.View())
	s.WriteString("\n\n")
	s.WriteString(hintStyle.Render("Enter übernimmt, Esc zurück zum Menü"))

	return menuStyle.Render(s.String())
}

func (m model) renderQuizSetup() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render("Quiz starten"))
	s.WriteString("\n\n")

	if m.err != nil {
		s.WriteString(errorStyle.Render(m.err.Error()))
		s.WriteString("\n\n")
	}

	s.WriteString("Wie viele Vokabeln möchtest du üben?\n")
	s.WriteString(m.input.View())
	s.WriteString("\n\n")
	s.WriteString(hintStyle.Render("Enter startet, Esc zurück zum Menü"))

	return menuStyle.Render(s.String())
}

func (m model) renderQuizQuestion() string {
	var s strings.Builder

	question := m.quiz.Current()

	s.WriteString(titleStyle.Render(fmt.Sprintf("Frage %d/%d", question.Index+1, question.Total)))
	s.WriteString("\n\n")

	if question.Direction == trainer.DirectionDEEN {
		s.WriteString(fmt.Sprintf("Was heißt '%s' auf Englisch?\n", question.Prompt()))
	} else {
		s.WriteString(fmt.Sprintf("Was heißt '%s' auf Deutsch?\n", question.Prompt()))
	}
	s.WriteString(m.input.View())
	s.WriteString("\n\n")
	s.WriteString(hintStyle.Render("Enter antwortet, Esc bricht die Runde ab"))

	return menuStyle.Render(s.String())
}

func (m model) renderQuizFeedback() string {
	var s strings.Builder

	if m.feedback.WasCorrect {
		s.WriteString(successStyle.Render("✓ Richtig!"))
	} else {
		s.WriteString(errorStyle.Render("✗ Falsch!"))
		s.WriteString(fmt.Sprintf("\nRichtige Antwort: %s", m.feedback.CorrectAnswer))
	}

	s.WriteString("\n\n")
	if m.quiz != nil && !m.quiz.Done() {
		s.WriteString(hintStyle.Render("Enter für die nächste Frage"))
	} else {
		s.WriteString(hintStyle.Render("Enter zeigt das Ergebnis"))
	}

	return menuStyle.Render(s.String())
}

func (m model) renderQuizResults() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render("Quiz abgeschlossen!"))
	s.WriteString("\n\n")

	if m.err != nil {
		s.WriteString(errorStyle.Render(fmt.Sprintf("Fehler: %v", m.err)))
		s.WriteString("\n\n")
	}

	s.WriteString(fmt.Sprintf("Ergebnis: %d/%d richtig\n\n", m.session.Correct, m.session.Total))

	var correct, incorrect []store.Result
	for _, r := range m.session.Results {
		if r.WasCorrect {
			correct = append(correct, r)
		} else {
			incorrect = append(incorrect, r)
		}
	}

	if len(correct) > 0 {
		s.WriteString(successStyle.Render("✓ Richtige Antworten:"))
		s.WriteString("\n")
		for _, r := range correct {
			s.WriteString(fmt.Sprintf("  • %s – %s\n", r.German, r.English))
		}
		s.WriteString("\n")
	}

	if len(incorrect) > 0 {
		s.WriteString(errorStyle.Render("✗ Falsche Antworten:"))
		s.WriteString("\n")
		for _, r := range incorrect {
			s.WriteString(fmt.Sprintf("  • %s – %s\n", r.German, r.English))
			s.WriteString(fmt.Sprintf("    Deine Antwort: %s\n", r.UserAnswer))
			s.WriteString(fmt.Sprintf("    Richtig wäre: %s\n", r.CorrectAnswer))
		}
		s.WriteString("\n")
	}

	s.WriteString(hintStyle.Render("Enter zurück zum Menü"))

	return menuStyle.Render(s.String())
}

func (m model) renderList() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render("Alle Vokabeln"))
	s.WriteString("\n\n")

	if m.err != nil {
		s.WriteString(errorStyle.Render(fmt.Sprintf("Fehler: %v", m.err)))
		s.WriteString("\n\n")
	}

	if len(m.vocables) == 0 {
		s.WriteString("Keine Vokabeln vorhanden.\n")
	} else {
		for i, v := range m.vocables {
			line := fmt.Sprintf("%s – %s | Score: %d | Geübt: %s | Richtig: %s",
				v.DE, v.EN, v.Score, stampText(v.LastPracticed), stampText(v.LastCorrect))
			if i == m.listCursor {
				s.WriteString(selectedStyle.Render("> " + line))
			} else {
				s.WriteString(normalStyle.Render("  " + line))
			}
			s.WriteString("\n")
		}
	}

	s.WriteString("\n")
	s.WriteString(hintStyle.Render("↑/↓ wählt, d löscht die Vokabel, Enter zurück zum Menü"))

	return menuStyle.Render(s.String())
}

func (m model) renderSessions() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render("Lernverlauf"))
	s.WriteString("\n\n")

	if len(m.sessions) == 0 {
		s.WriteString("Noch keine Quizrunden abgeschlossen.\n")
	} else {
		for _, session := range m.sessions {
			s.WriteString(fmt.Sprintf("%s | %d/%d richtig\n",
				session.Timestamp.String(), session.Correct, session.Total))
		}
	}

	s.WriteString("\n")
	s.WriteString(hintStyle.Render("Enter zurück zum Menü"))

	return menuStyle.Render(s.String())
}

func (m model) renderImportInput() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render("Vokabeln importieren"))
	s.WriteString("\n\n")

	s.WriteString("Wortlisten enthalten Zeilen wie 'Haus - house'.\n\n")
	s.WriteString(m.input.View())
	s.WriteString("\n\n")
	s.WriteString(hintStyle.Render("Enter importiert, Esc zurück zum Menü"))

	return menuStyle.Render(s.String())
}

func (m model) renderImportLoading() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render("Vokabeln importieren"))
	s.WriteString("\n\n")
	s.WriteString(m.spinner.View())
	s.WriteString(" Wortliste wird gelesen...")

	return menuStyle.Render(s.String())
}

func (m model) renderImportResult() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render("Vokabeln importieren"))
	s.WriteString("\n\n")

	if m.err != nil {
		s.WriteString(errorStyle.Render(fmt.Sprintf("Fehler: %v", m.err)))
	} else {
		s.WriteString(successStyle.Render(fmt.Sprintf("✓ %d Vokabeln importiert", m.imported)))
	}

	s.WriteString("\n\n")
	s.WriteString(hintStyle.Render("Enter zurück zum Menü"))

	return menuStyle.Render(s.String())
}

func stampText(s *store.Stamp) string {
	if s == nil {
		return ""
	}
	return s.String()
}

const (
	exitCodeOK int = iota
	exitCodeConfig
	exitCodeStore
	exitCodeLoad
	exitCodeTUI
)

func main() {
	os.Exit(run())
}

func run() int {
	conf, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Konfiguration fehlerhaft: %v\n", err)
		return exitCodeConfig
	}

	log, closeLog, err := newLogger(conf.LogFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Logdatei kann nicht geöffnet werden: %v\n", err)
		return exitCodeConfig
	}
	defer closeLog()

	st, err := newStore(conf)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Speicher kann nicht geöffnet werden: %v\n", err)
		return exitCodeStore
	}
	defer st.Close()

	log.Info("starting trainer", "backend", conf.Backend, "data_dir", conf.DataDir)

	m, err := initialModel(trainer.New(st, log))
	if err != nil {
		// Malformed documents are fatal; nothing is overwritten.
		fmt.Fprintf(os.Stderr, "Fehler beim Laden der Daten: %v\n", err)
		return exitCodeLoad
	}

	if _, err := tea.NewProgram(m).Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Fehler: %v\n", err)
		return exitCodeTUI
	}

	log.Info("trainer stopped")
	return exitCodeOK
}

func newStore(conf config.Config) (store.Store, error) {
	switch conf.Backend {
	case config.BackendSQLite:
		return store.NewSQLiteStore(filepath.Join(conf.DataDir, conf.DBPath))
	default:
		return store.NewJSONStore(conf.DataDir)
	}
}

func newLogger(path string) (*slog.Logger, func(), error) {
	if path == "" {
		return slog.New(slog.NewJSONHandler(io.Discard, nil)), func() {}, nil
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, nil, err
	}
	return slog.New(slog.NewJSONHandler(file, nil)), func() { file.Close() }, nil
}
