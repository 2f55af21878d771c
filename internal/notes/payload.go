// Package notes defines the structured questionnaire record a listener fills
// out per anonymized take.
package notes

import (
	"fmt"
	"strings"
)

// Option lists for the multi-select questionnaire sections. The payload only
// ever stores values from these lists.
var (
	VoiceProductionOptions = []string{
		"Clear diction",
		"Legato line",
		"Even vibrato",
		"Breath-driven phrasing",
		"Secure upper register",
		"Warm timbre",
		"Bright / metallic timbre",
		"Dark / covered timbre",
		"Heavy production",
		"Flexible / agile",
		"Nasal resonance audible",
		`Croaky / "froggish" quality`,
	}

	LanguageOptions = []string{
		"Text clearly understandable",
		"Consonants very present",
		"Vowels well shaped",
		"Non-native accent perceptible",
	}

	StyleOptions = []string{
		"Bel canto oriented",
		"Verismo oriented",
		"Historically older style",
		"Modern / international style",
		"Dramatic / theatrical",
		"Intimate / inward",
	}

	MeaningIntentOptions = []string{
		"Musical intention feels clear",
		"Phrasing feels purposeful",
		"Dynamic shaping feels deliberate",
		"Rubato feels meaningful",
		"Text delivery feels intentional",
		"I sense a clear point of view",
	}

	SenseMakingOptions = []string{
		"Dramatic situation feels clear",
		"Emotional arc is understandable",
		"The aria feels embedded in a story",
		"I understand why this aria exists",
	}

	TransmissionOptions = []string{
		"Strongly reaches me",
		"Reaches me at moments",
		"Neutral",
		"Emotionally distant",
		"Feels mannered / performative",
	}

	AnchorOptions     = []string{"Yes", "Unsure", "No"}
	ImpressionOptions = []string{"Loved it", "Convincing", "Neutral", "Distracting", "Not for me"}
)

const (
	DefaultTransmission = "Neutral"
	DefaultAnchor       = "Unsure"
	DefaultImpression   = "Neutral"
)

// Payload is one listener's answers for one take. Saves are whole-record
// overwrites; there is no per-field patching and no history.
type Payload struct {
	VoiceProduction []string `json:"voice_production"`
	Language        []string `json:"language"`
	Style           []string `json:"style"`
	MeaningIntent   []string `json:"meaning_intent"`
	SenseMaking     []string `json:"sense_making"`
	Transmission    string   `json:"transmission"`
	Anchor          string   `json:"anchor"`
	Impression      string   `json:"impression"`
	Comment         string   `json:"comment"`
}

// Empty returns a payload with every default filled in.
func Empty() Payload {
	return Payload{
		VoiceProduction: []string{},
		Language:        []string{},
		Style:           []string{},
		MeaningIntent:   []string{},
		SenseMaking:     []string{},
		Transmission:    DefaultTransmission,
		Anchor:          DefaultAnchor,
		Impression:      DefaultImpression,
		Comment:         "",
	}
}

// Normalize fills defaults for omitted single selects, replaces nil sets with
// empty ones and trims the free-text comment.
func (p *Payload) Normalize() {
	if p.VoiceProduction == nil {
		p.VoiceProduction = []string{}
	}
	if p.Language == nil {
		p.Language = []string{}
	}
	if p.Style == nil {
		p.Style = []string{}
	}
	if p.MeaningIntent == nil {
		p.MeaningIntent = []string{}
	}
	if p.SenseMaking == nil {
		p.SenseMaking = []string{}
	}
	if p.Transmission == "" {
		p.Transmission = DefaultTransmission
	}
	if p.Anchor == "" {
		p.Anchor = DefaultAnchor
	}
	if p.Impression == "" {
		p.Impression = DefaultImpression
	}
	p.Comment = strings.TrimSpace(p.Comment)
}

// Validate checks every answer against its option list. Call Normalize first.
func (p *Payload) Validate() error {
	if err := subset("voice_production", p.VoiceProduction, VoiceProductionOptions); err != nil {
		return err
	}
	if err := subset("language", p.Language, LanguageOptions); err != nil {
		return err
	}
	if err := subset("style", p.Style, StyleOptions); err != nil {
		return err
	}
	if err := subset("meaning_intent", p.MeaningIntent, MeaningIntentOptions); err != nil {
		return err
	}
	if err := subset("sense_making", p.SenseMaking, SenseMakingOptions); err != nil {
		return err
	}
	if !contains(TransmissionOptions, p.Transmission) {
		return fmt.Errorf("invalid transmission %q", p.Transmission)
	}
	if !contains(AnchorOptions, p.Anchor) {
		return fmt.Errorf("invalid anchor %q", p.Anchor)
	}
	if !contains(ImpressionOptions, p.Impression) {
		return fmt.Errorf("invalid impression %q", p.Impression)
	}
	return nil
}

// Key identifies a note within a work: "workID::takeID".
func Key(workID, takeID string) string {
	return workID + "::" + takeID
}

func subset(field string, values, allowed []string) error {
	for _, v := range values {
		if !contains(allowed, v) {
			return fmt.Errorf("invalid %s value %q", field, v)
		}
	}
	return nil
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
