package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// CanonicalTeaIntent is the tea ordering intent. Plain trigger files carry no slot
// templates, so it keeps its product slot through canonicalDefaultSlots.
const CanonicalTeaIntent = "siparis_cay"

var canonicalDefaultSlots = map[string]map[string]any{
	CanonicalTeaIntent: {SlotProduct: "Çay"},
}

// IntentDefinition is one intent of a TriggerSet: its trigger phrases and the slot
// values every detection of the intent should suggest.
type IntentDefinition struct {
	Name         string         `json:"name"`
	Triggers     []string       `json:"triggers"`
	DefaultSlots map[string]any `json:"default_slots,omitempty"`
}

// TriggerSet maps intent names to trigger phrases. Intents keep their insertion order;
// detection ties are broken by it.
type TriggerSet struct {
	Intents []IntentDefinition
}

// NewTriggerSet builds a set from the given definitions, merging repeated intents and
// dropping duplicate phrases.
func NewTriggerSet(defs ...IntentDefinition) TriggerSet {
	var set TriggerSet
	for _, def := range defs {
		set.ensure(def.Name)
		for _, phrase := range def.Triggers {
			set.AddPhrase(def.Name, phrase)
		}
		if len(def.DefaultSlots) > 0 {
			set.SetDefaultSlots(def.Name, def.DefaultSlots)
		}
	}
	return set
}

// Len returns the number of intents.
func (s TriggerSet) Len() int {
	return len(s.Intents)
}

// PhraseCount returns the number of trigger phrases across all intents.
func (s TriggerSet) PhraseCount() int {
	n := 0
	for _, def := range s.Intents {
		n += len(def.Triggers)
	}
	return n
}

// Find returns the definition of the named intent.
func (s TriggerSet) Find(intent string) (IntentDefinition, bool) {
	if i := s.index(intent); i >= 0 {
		return s.Intents[i], true
	}
	return IntentDefinition{}, false
}

// Contains reports whether phrase is a trigger of intent. The match is exact and case-sensitive.
func (s TriggerSet) Contains(intent, phrase string) bool {
	i := s.index(intent)
	if i < 0 {
		return false
	}
	for _, p := range s.Intents[i].Triggers {
		if p == phrase {
			return true
		}
	}
	return false
}

// SlotsFor returns the default slots of intent, falling back to the canonical templates.
// The returned map is a copy.
func (s TriggerSet) SlotsFor(intent string) map[string]any {
	slots := canonicalDefaultSlots[intent]
	if def, ok := s.Find(intent); ok && len(def.DefaultSlots) > 0 {
		slots = def.DefaultSlots
	}
	out := make(map[string]any, len(slots))
	for k, v := range slots {
		out[k] = v
	}
	return out
}

// AddPhrase appends phrase to intent, creating the intent if needed.
// It returns false when the phrase was already present.
func (s *TriggerSet) AddPhrase(intent, phrase string) bool {
	if s.Contains(intent, phrase) {
		return false
	}
	i := s.ensure(intent)
	s.Intents[i].Triggers = append(s.Intents[i].Triggers, phrase)
	return true
}

// RemovePhrase removes phrase from intent. It returns false when nothing was removed.
// The intent itself stays in the set, possibly with no phrases.
func (s *TriggerSet) RemovePhrase(intent, phrase string) bool {
	i := s.index(intent)
	if i < 0 {
		return false
	}
	phrases := s.Intents[i].Triggers
	for j, p := range phrases {
		if p == phrase {
			kept := make([]string, 0, len(phrases)-1)
			kept = append(kept, phrases[:j]...)
			kept = append(kept, phrases[j+1:]...)
			s.Intents[i].Triggers = kept
			return true
		}
	}
	return false
}

// SetDefaultSlots replaces the slot template of intent, creating the intent if needed.
// A nil or empty map clears the template.
func (s *TriggerSet) SetDefaultSlots(intent string, slots map[string]any) {
	i := s.ensure(intent)
	if len(slots) == 0 {
		s.Intents[i].DefaultSlots = nil
		return
	}
	copied := make(map[string]any, len(slots))
	for k, v := range slots {
		copied[k] = v
	}
	s.Intents[i].DefaultSlots = copied
}

// Clone returns a deep copy safe to mutate independently.
func (s TriggerSet) Clone() TriggerSet {
	out := TriggerSet{Intents: make([]IntentDefinition, len(s.Intents))}
	for i, def := range s.Intents {
		c := IntentDefinition{
			Name:     def.Name,
			Triggers: append([]string(nil), def.Triggers...),
		}
		if len(def.DefaultSlots) > 0 {
			c.DefaultSlots = make(map[string]any, len(def.DefaultSlots))
			for k, v := range def.DefaultSlots {
				c.DefaultSlots[k] = v
			}
		}
		out.Intents[i] = c
	}
	return out
}

func (s TriggerSet) index(intent string) int {
	for i, def := range s.Intents {
		if def.Name == intent {
			return i
		}
	}
	return -1
}

func (s *TriggerSet) ensure(intent string) int {
	if i := s.index(intent); i >= 0 {
		return i
	}
	s.Intents = append(s.Intents, IntentDefinition{Name: intent, Triggers: []string{}})
	return len(s.Intents) - 1
}

// intentObject is the extended on-disk form of an intent.
type intentObject struct {
	Triggers     []string       `json:"triggers"`
	DefaultSlots map[string]any `json:"default_slots,omitempty"`
}

// MarshalJSON writes the set as a JSON object keyed by intent name, in insertion order.
// Intents without default slots are written as a plain array of phrases.
func (s TriggerSet) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, def := range s.Intents {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(def.Name)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')

		phrases := def.Triggers
		if phrases == nil {
			phrases = []string{}
		}
		var value []byte
		if len(def.DefaultSlots) == 0 {
			value, err = json.Marshal(phrases)
		} else {
			value, err = json.Marshal(intentObject{Triggers: phrases, DefaultSlots: def.DefaultSlots})
		}
		if err != nil {
			return nil, fmt.Errorf("marshal intent %q: %w", def.Name, err)
		}
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads both the plain form (intent -> [phrases]) and the extended form
// (intent -> {"triggers": [...], "default_slots": {...}}), keeping key order.
func (s *TriggerSet) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		*s = TriggerSet{}
		return nil
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("trigger set must be a JSON object")
	}

	var set TriggerSet
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		intent, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("unexpected key %v", keyTok)
		}

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return fmt.Errorf("intent %q: %w", intent, err)
		}
		def, err := decodeIntent(intent, raw)
		if err != nil {
			return err
		}
		set.ensure(intent)
		for _, phrase := range def.Triggers {
			set.AddPhrase(intent, phrase)
		}
		if len(def.DefaultSlots) > 0 {
			set.SetDefaultSlots(intent, def.DefaultSlots)
		}
	}
	if _, err := dec.Token(); err != nil {
		return err
	}

	*s = set
	return nil
}

func decodeIntent(intent string, raw json.RawMessage) (intentObject, error) {
	trimmed := bytes.TrimSpace(raw)
	var obj intentObject
	switch {
	case len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")):
		return obj, nil
	case trimmed[0] == '[':
		if err := json.Unmarshal(trimmed, &obj.Triggers); err != nil {
			return obj, fmt.Errorf("intent %q: %w", intent, err)
		}
	case trimmed[0] == '{':
		if err := json.Unmarshal(trimmed, &obj); err != nil {
			return obj, fmt.Errorf("intent %q: %w", intent, err)
		}
	default:
		return obj, fmt.Errorf("intent %q: expected array or object", intent)
	}
	return obj, nil
}
