package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// JSON-serialized column types. Stored as text so the same models run
// against PostgreSQL in production and sqlite in tests.

func jsonValue(v interface{}) (driver.Value, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func jsonScan(dest interface{}, value interface{}) error {
	if value == nil {
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, dest)
	case string:
		return json.Unmarshal([]byte(v), dest)
	}
	return fmt.Errorf("unsupported column type %T", value)
}

// StringList holds an ordered list of strings (player IDs, words).
type StringList []string

func (l StringList) Value() (driver.Value, error) { return jsonValue([]string(l)) }
func (l *StringList) Scan(value interface{}) error {
	return jsonScan((*[]string)(l), value)
}

// Contains reports whether id is present in the list.
func (l StringList) Contains(id string) bool {
	for _, v := range l {
		if v == id {
			return true
		}
	}
	return false
}

// SymbolToken is one letter/symbol challenge entry, tagged with its
// position in the sequence.
type SymbolToken struct {
	Char     string `json:"char"`
	Position int    `json:"position"`
}

type SymbolList []SymbolToken

func (l SymbolList) Value() (driver.Value, error) { return jsonValue([]SymbolToken(l)) }
func (l *SymbolList) Scan(value interface{}) error {
	return jsonScan((*[]SymbolToken)(l), value)
}

// Hold is a word that must be typed while a specific digit key is held.
type Hold struct {
	Word string `json:"word"`
	Key  string `json:"key"`
}

type HoldList []Hold

func (l HoldList) Value() (driver.Value, error) { return jsonValue([]Hold(l)) }
func (l *HoldList) Scan(value interface{}) error {
	return jsonScan((*[]Hold)(l), value)
}

// StepMetrics are the optional typing metrics reported with a step
// completion.
type StepMetrics struct {
	Errors   int     `json:"errors"`
	TimeMs   int     `json:"time_ms"`
	Accuracy float64 `json:"accuracy,omitempty"`
	WPM      float64 `json:"wpm,omitempty"`
}

// StepResult records one completed step for one player.
type StepResult struct {
	Done    bool         `json:"done"`
	Metrics *StepMetrics `json:"metrics,omitempty"`
}

// PlayerProgress maps a step to its result for a single player.
type PlayerProgress map[Step]StepResult

// ProgressMap maps player ID to that player's per-step progress. Keys
// are always a subset of the game's PlayerIDs.
type ProgressMap map[string]PlayerProgress

func (m ProgressMap) Value() (driver.Value, error) {
	if m == nil {
		m = ProgressMap{}
	}
	return jsonValue(map[string]PlayerProgress(m))
}

func (m *ProgressMap) Scan(value interface{}) error {
	return jsonScan((*map[string]PlayerProgress)(m), value)
}

// StepDone reports whether the given player has completed the given step.
func (m ProgressMap) StepDone(playerID string, step Step) bool {
	return m[playerID][step].Done
}

// AllDone reports whether the given player has completed every step.
func (m ProgressMap) AllDone(playerID string) bool {
	for _, step := range OrderedSteps {
		if !m.StepDone(playerID, step) {
			return false
		}
	}
	return true
}

// Merge records a step result for a player without disturbing any
// previously recorded step or any other player's entries.
func (m ProgressMap) Merge(playerID string, step Step, result StepResult) ProgressMap {
	if m == nil {
		m = ProgressMap{}
	}
	player := m[playerID]
	if player == nil {
		player = PlayerProgress{}
	}
	player[step] = result
	m[playerID] = player
	return m
}
