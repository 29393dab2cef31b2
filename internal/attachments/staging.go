// Package attachments holds files a visitor selected for upload until the form is submitted.
package attachments

import (
	"fmt"
	"mime"
	"strings"

	apperrors "hub47-site/internal/common/errors"
)

const (
	KB = 1 << 10
	MB = 1 << 20
)

// Slot declares one attachment purpose, e.g. "pitch deck" or "profile picture".
type Slot struct {
	Name          string   `json:"name"`
	Label         string   `json:"label"`
	Subtype       string   `json:"subtype,omitempty"`
	MaxBytes      int64    `json:"maxBytes"`
	AcceptedTypes []string `json:"acceptedTypes"`
	Required      bool     `json:"required"`
}

// Accepts reports whether contentType matches an exact type or a "type/*" wildcard.
func (s Slot) Accepts(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		mediaType = strings.ToLower(strings.TrimSpace(contentType))
	}
	for _, accepted := range s.AcceptedTypes {
		accepted = strings.ToLower(accepted)
		if accepted == mediaType {
			return true
		}
		if prefix, ok := strings.CutSuffix(accepted, "/*"); ok && strings.HasPrefix(mediaType, prefix+"/") {
			return true
		}
	}
	return false
}

// LimitLabel renders MaxBytes the way rejection reasons quote it, e.g. "10MB".
func (s Slot) LimitLabel() string {
	if s.MaxBytes > 0 && s.MaxBytes%MB == 0 {
		return fmt.Sprintf("%dMB", s.MaxBytes/MB)
	}
	return FormatSize(s.MaxBytes)
}

type File struct {
	Name        string
	ContentType string
	Size        int64
	Data        []byte
}

// Record is a staged file plus the metadata shown next to its slot.
type Record struct {
	Slot        string `json:"slot"`
	DisplayName string `json:"displayName"`
	SizeLabel   string `json:"sizeLabel"`
	ContentType string `json:"contentType"`
	File        File   `json:"-"`
}

type StageResult struct {
	Accepted bool   `json:"accepted"`
	Reason   string `json:"reason,omitempty"`
}

// Err returns an AttachmentRejectedError for a rejected result.
func (r StageResult) Err(slot string) error {
	if r.Accepted {
		return nil
	}
	return &apperrors.AttachmentRejectedError{Slot: slot, Reason: r.Reason}
}

// Staging keeps at most one file per declared slot. It is not safe for concurrent
// use; the wizard controller serializes access.
type Staging struct {
	slots   []Slot
	index   map[string]int
	records map[string]*Record
}

func NewStaging(slots []Slot) *Staging {
	s := &Staging{
		slots:   slots,
		index:   make(map[string]int, len(slots)),
		records: make(map[string]*Record, len(slots)),
	}
	for i, slot := range slots {
		s.index[slot.Name] = i
	}
	return s
}

func (s *Staging) Slot(name string) (Slot, bool) {
	i, ok := s.index[name]
	if !ok {
		return Slot{}, false
	}
	return s.slots[i], true
}

// Stage validates f against the slot and, if accepted, replaces the slot's content.
// A rejected file leaves the previous content untouched.
func (s *Staging) Stage(slotName string, f File) StageResult {
	slot, ok := s.Slot(slotName)
	if !ok {
		return StageResult{Reason: "unknown slot"}
	}

	size := f.Size
	if size == 0 {
		size = int64(len(f.Data))
	}
	if size <= 0 {
		return StageResult{Reason: "file is empty"}
	}
	if slot.MaxBytes > 0 && size > slot.MaxBytes {
		return StageResult{Reason: "exceeds " + slot.LimitLabel()}
	}
	if !slot.Accepts(f.ContentType) {
		return StageResult{Reason: fmt.Sprintf("type %s not accepted", displayType(f.ContentType))}
	}

	f.Size = size
	s.records[slotName] = &Record{
		Slot:        slotName,
		DisplayName: f.Name,
		SizeLabel:   FormatSize(size),
		ContentType: f.ContentType,
		File:        f,
	}
	return StageResult{Accepted: true}
}

// Unstage clears the slot and drops the buffer reference.
func (s *Staging) Unstage(slotName string) error {
	if _, ok := s.index[slotName]; !ok {
		return fmt.Errorf("%w: %s", apperrors.ErrUnknownSlot, slotName)
	}
	s.release(slotName)
	return nil
}

// Clear releases every staged file.
func (s *Staging) Clear() {
	for name := range s.records {
		s.release(name)
	}
}

func (s *Staging) release(name string) {
	if rec, ok := s.records[name]; ok {
		rec.File.Data = nil
		delete(s.records, name)
	}
}

// Records returns staged files in slot declaration order.
func (s *Staging) Records() []Record {
	out := make([]Record, 0, len(s.records))
	for _, slot := range s.slots {
		if rec, ok := s.records[slot.Name]; ok {
			out = append(out, *rec)
		}
	}
	return out
}

// MissingRequired lists required slots with nothing staged.
func (s *Staging) MissingRequired() []string {
	var out []string
	for _, slot := range s.slots {
		if _, ok := s.records[slot.Name]; slot.Required && !ok {
			out = append(out, slot.Name)
		}
	}
	return out
}

// FormatSize renders a byte count as "N B", "x.y KB" or "x.y MB".
func FormatSize(n int64) string {
	switch {
	case n < KB:
		return fmt.Sprintf("%d B", n)
	case n < MB:
		return fmt.Sprintf("%.1f KB", float64(n)/KB)
	default:
		return fmt.Sprintf("%.1f MB", float64(n)/MB)
	}
}

func displayType(ct string) string {
	if ct == "" {
		return "(unknown)"
	}
	return ct
}
