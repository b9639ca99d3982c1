// Package scan models one barcode scanning screen: a lookup per scan, and a
// blocking "add manually?" prompt when the product is not found.
package scan

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/hyperjump/taberu/internal/manual"
	"github.com/hyperjump/taberu/internal/models"
	"github.com/hyperjump/taberu/pkg/utils"
	"go.uber.org/zap"
)

// ErrNoPrompt is returned by Resolve when no not-found prompt is pending.
var ErrNoPrompt = errors.New("no pending not-found prompt")

// Lookuper resolves one barcode, returning nil when it is not found.
type Lookuper interface {
	LookupBarcode(ctx context.Context, barcode string) *models.Food
}

// Kind is the outcome of a scan.
type Kind int

const (
	// Ignored means the scan arrived while a lookup or prompt was pending.
	Ignored Kind = iota
	// Found carries the product.
	Found
	// NotFound means the prompt is now pending; call Resolve.
	NotFound
)

func (k Kind) String() string {
	switch k {
	case Found:
		return "found"
	case NotFound:
		return "not_found"
	}
	return "ignored"
}

// Outcome is the result of Scan.
type Outcome struct {
	Kind    Kind
	Barcode string
	Food    *models.Food
}

// Choice answers the not-found prompt.
type Choice string

const (
	// ChoiceReset dismisses the prompt and resumes scanning.
	ChoiceReset Choice = "reset"
	// ChoiceManual opens the manual entry form for the scanned barcode.
	ChoiceManual Choice = "manual"
)

// Choices lists the prompt options in display order.
var Choices = []Choice{ChoiceReset, ChoiceManual}

// Session is the state of one scanner view.
type Session struct {
	lookup Lookuper
	logger *zap.Logger

	mu      sync.Mutex
	busy    bool
	pending string
}

// NewSession creates a scanner session backed by lookup.
func NewSession(lookup Lookuper, logger *zap.Logger) *Session {
	return &Session{lookup: lookup, logger: utils.OrNop(logger)}
}

// Scan looks up barcode. While a lookup is in flight or a prompt is pending,
// further scans are ignored, as the camera keeps reporting the same code.
func (s *Session) Scan(ctx context.Context, barcode string) Outcome {
	barcode = strings.TrimSpace(barcode)
	s.mu.Lock()
	if s.busy || s.pending != "" || barcode == "" {
		s.mu.Unlock()
		return Outcome{Kind: Ignored, Barcode: barcode}
	}
	s.busy = true
	s.mu.Unlock()

	food := s.lookup.LookupBarcode(ctx, barcode)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.busy = false
	if food == nil {
		s.pending = barcode
		s.logger.Debug("scan not found, prompting", zap.String("barcode", barcode))
		return Outcome{Kind: NotFound, Barcode: barcode}
	}
	return Outcome{Kind: Found, Barcode: barcode, Food: food}
}

// Pending returns the barcode awaiting a prompt answer, if any.
func (s *Session) Pending() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending, s.pending != ""
}

// Resolve answers the prompt. ChoiceManual returns a manual entry prefilled
// with the barcode and gram unit; ChoiceReset returns nil. Both resume scanning.
func (s *Session) Resolve(choice Choice) (*manual.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending == "" {
		return nil, ErrNoPrompt
	}
	barcode := s.pending
	switch choice {
	case ChoiceReset:
		s.pending = ""
		return nil, nil
	case ChoiceManual:
		s.pending = ""
		return ManualEntryFor(barcode), nil
	}
	return nil, errors.New("unknown choice " + string(choice))
}

// ManualEntryFor is the manual entry form opened from the not-found prompt.
func ManualEntryFor(barcode string) *manual.Entry {
	return &manual.Entry{Barcode: barcode, Unit: manual.UnitGram, Amount: "100"}
}
