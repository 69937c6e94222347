package domain

import (
	"encoding/json"
	"testing"
)

func TestTriggerSet_UnmarshalKeepsOrderAndForms(t *testing.T) {
	data := []byte(`{
		"siparis_cay": ["çay ver", "bir çay", "çay ver"],
		"siparis_kahve": {"triggers": ["kahve"], "default_slots": {"urun": "Türk Kahvesi"}},
		"hesap_iste": []
	}`)

	var set TriggerSet
	if err := json.Unmarshal(data, &set); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if set.Len() != 3 {
		t.Fatalf("expected 3 intents, got %d", set.Len())
	}
	names := []string{set.Intents[0].Name, set.Intents[1].Name, set.Intents[2].Name}
	if names[0] != "siparis_cay" || names[1] != "siparis_kahve" || names[2] != "hesap_iste" {
		t.Errorf("expected file order, got %v", names)
	}
	if got := set.Intents[0].Triggers; len(got) != 2 {
		t.Errorf("expected duplicate phrase dropped, got %v", got)
	}
	if set.SlotsFor("siparis_kahve")[SlotProduct] != "Türk Kahvesi" {
		t.Errorf("expected coffee slot template, got %v", set.SlotsFor("siparis_kahve"))
	}
	if set.PhraseCount() != 3 {
		t.Errorf("expected 3 phrases, got %d", set.PhraseCount())
	}
}

func TestTriggerSet_MarshalRoundTrip(t *testing.T) {
	set := NewTriggerSet(
		IntentDefinition{Name: "b_intent", Triggers: []string{"iki"}},
		IntentDefinition{Name: "a_intent", Triggers: []string{"bir"}, DefaultSlots: map[string]any{"urun": "Su"}},
	)

	data, err := json.Marshal(set)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	want := `{"b_intent":["iki"],"a_intent":{"triggers":["bir"],"default_slots":{"urun":"Su"}}}`
	if string(data) != want {
		t.Errorf("expected %s, got %s", want, data)
	}

	var back TriggerSet
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if back.Intents[0].Name != "b_intent" || !back.Contains("a_intent", "bir") {
		t.Errorf("round trip lost data: %+v", back)
	}
}

func TestTriggerSet_UnmarshalRejectsInvalidShapes(t *testing.T) {
	cases := map[string]string{
		"top level array": `["çay"]`,
		"scalar value":    `{"siparis_cay": "çay"}`,
		"bad phrases":     `{"siparis_cay": [1, 2]}`,
	}
	for name, input := range cases {
		t.Run(name, func(t *testing.T) {
			var set TriggerSet
			if err := json.Unmarshal([]byte(input), &set); err == nil {
				t.Errorf("expected error for %s", input)
			}
		})
	}
}

func TestTriggerSet_SlotsFor(t *testing.T) {
	set := NewTriggerSet(IntentDefinition{Name: CanonicalTeaIntent, Triggers: []string{"çay"}})

	tea := set.SlotsFor(CanonicalTeaIntent)
	if tea[SlotProduct] != "Çay" {
		t.Errorf("expected canonical tea product, got %v", tea)
	}
	tea[SlotProduct] = "changed"
	if set.SlotsFor(CanonicalTeaIntent)[SlotProduct] != "Çay" {
		t.Error("SlotsFor must return a copy")
	}

	if slots := set.SlotsFor("garson_cagir"); len(slots) != 0 {
		t.Errorf("expected no slots, got %v", slots)
	}

	set.SetDefaultSlots(CanonicalTeaIntent, map[string]any{SlotProduct: "Rize Çayı"})
	if set.SlotsFor(CanonicalTeaIntent)[SlotProduct] != "Rize Çayı" {
		t.Error("explicit template must override the canonical one")
	}
}

func TestTriggerSet_RemovePhraseKeepsIntent(t *testing.T) {
	set := NewTriggerSet(IntentDefinition{Name: "hesap_iste", Triggers: []string{"hesap"}})

	if !set.RemovePhrase("hesap_iste", "hesap") {
		t.Fatal("expected removal")
	}
	if set.RemovePhrase("hesap_iste", "hesap") {
		t.Error("second removal must be a no-op")
	}
	def, ok := set.Find("hesap_iste")
	if !ok {
		t.Fatal("intent must stay in the set")
	}
	if len(def.Triggers) != 0 {
		t.Errorf("expected no phrases, got %v", def.Triggers)
	}

	data, _ := json.Marshal(set)
	if string(data) != `{"hesap_iste":[]}` {
		t.Errorf("expected empty phrase list on disk, got %s", data)
	}
}

func TestDetectionResult_Accessors(t *testing.T) {
	var empty DetectionResult
	if empty.IntentName() != "" || empty.Trigger() != "" || empty.Quantity() != 1 {
		t.Errorf("unexpected zero value accessors")
	}

	intent, phrase := "siparis_cay", "çay ver"
	r := DetectionResult{Intent: &intent, MatchedTrigger: &phrase, SuggestedSlot: map[string]any{SlotQuantity: 3}}
	if r.IntentName() != intent || r.Trigger() != phrase || r.Quantity() != 3 {
		t.Errorf("unexpected accessors %q %q %d", r.IntentName(), r.Trigger(), r.Quantity())
	}
}
