package tui

import (
	"bytes"
	"fmt"
	"io"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/exp/teatest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bascanada/smartsearch/pkg/config"
)

func waitForCondition(t *testing.T, tm *teatest.TestModel, condition func([]byte) bool, msg ...string) {
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		// Read output from the virtual terminal
		out, err := io.ReadAll(tm.Output())
		if err != nil {
			t.Logf("Error reading output: %v", err)
		} else if condition(out) {
			return
		}
		time.Sleep(50 * time.Millisecond)
	}
	out, _ := io.ReadAll(tm.Output())
	if !condition(out) {
		failMsg := "Timeout waiting for condition"
		if len(msg) > 0 {
			failMsg = msg[0]
		}
		t.Errorf("%s. Last output:\n%s", failMsg, string(out))
	}
}

type TestStep struct {
	Name          string
	Action        func(tm *teatest.TestModel)
	ExpectPresent []string
}

func RunScenario(t *testing.T, tm *teatest.TestModel, steps []TestStep) {
	for i, step := range steps {
		t.Logf(">> Running Step %d: %s", i+1, step.Name)

		if step.Action != nil {
			step.Action(tm)
		}

		condition := func(bts []byte) bool {
			for _, s := range step.ExpectPresent {
				if !bytes.Contains(bts, []byte(s)) {
					return false
				}
			}
			return true
		}
		waitForCondition(t, tm, condition, fmt.Sprintf("Step %d (%s) validation failed", i+1, step.Name))
	}
}

func pressKey(k tea.KeyType) func(tm *teatest.TestModel) {
	return func(tm *teatest.TestModel) {
		tm.Send(tea.KeyMsg{Type: k})
	}
}

func TestScenario_BuildAndSubmitQuery(t *testing.T) {
	cfg := testConfig(t)
	engine, err := cfg.NewEngine(config.EngineOptions{})
	require.NoError(t, err)

	m := New(Options{Config: cfg, Engine: engine})
	tm := teatest.NewTestModel(t, m, teatest.WithInitialTermSize(100, 40))

	RunScenario(t, tm, []TestStep{
		{
			Name:          "keys are suggested on start",
			ExpectPresent: []string{"Keys", "count"},
		},
		{
			Name:          "typing narrows the keys",
			Action:        func(tm *teatest.TestModel) { tm.Type("lev") },
			ExpectPresent: []string{"state: freeText"},
		},
		{
			Name:          "arrow highlights the key",
			Action:        pressKey(tea.KeyDown),
			ExpectPresent: []string{"▸ level"},
		},
		{
			Name:          "tab accepts the key",
			Action:        pressKey(tea.KeyTab),
			ExpectPresent: []string{"Values of level"},
		},
		{
			Name: "arrows reach the first value",
			Action: func(tm *teatest.TestModel) {
				for range 3 {
					tm.Send(tea.KeyMsg{Type: tea.KeyDown})
				}
			},
			ExpectPresent: []string{"▸ error"},
		},
		{
			Name:          "enter accepts the value",
			Action:        pressKey(tea.KeyEnter),
			ExpectPresent: []string{"level:error"},
		},
		{
			Name:          "enter searches",
			Action:        pressKey(tea.KeyEnter),
			ExpectPresent: []string{"Searches"},
		},
	})

	tm.Send(tea.KeyMsg{Type: tea.KeyCtrlC})
	final := tm.FinalModel(t, teatest.WithFinalTimeout(5*time.Second)).(Model)
	assert.Equal(t, []string{"level:error"}, final.History())
}
