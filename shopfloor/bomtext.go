package shopfloor

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// DraftState tracks a BOM import through the upload wizard.
type DraftState string

const (
	DraftUpload     DraftState = "upload"
	DraftProcessing DraftState = "processing"
	DraftReview     DraftState = "review"
	DraftSaving     DraftState = "saving"
	DraftComplete   DraftState = "complete"
)

var draftNext = map[DraftState]DraftState{
	DraftUpload:     DraftProcessing,
	DraftProcessing: DraftReview,
	DraftReview:     DraftSaving,
	DraftSaving:     DraftComplete,
}

// Advance moves the draft one step through the wizard. Skipping steps
// is not allowed; a failed step re-enters from upload.
func (d *BOMDraft) Advance(to DraftState) error {
	if draftNext[d.State] != to {
		return &ValidationError{Field: "state", Msg: fmt.Sprintf("cannot move draft from %s to %s", d.State, to)}
	}
	d.State = to
	return nil
}

// BOMDraft is a parsed bill of materials awaiting review before it is
// written to the parts tables.
type BOMDraft struct {
	PartNumber  string         `json:"part_number"`
	Description string         `json:"description"`
	Cost        float64        `json:"cost"`
	Components  []BOMDraftLine `json:"components"`
	State       DraftState     `json:"state"`
}

type BOMDraftLine struct {
	PartNumber  string  `json:"part_number"`
	Description string  `json:"description"`
	Quantity    float64 `json:"quantity"`
	Unit        string  `json:"unit"`
}

var (
	bomHeaderRe = regexp.MustCompile(`^(\S+)\s*-\s*(.+)$`)
	bomCostRe   = regexp.MustCompile(`(?i)^Cost:\s*\$\s*([0-9]+(?:\.[0-9]+)?)`)
	bomTableRe  = regexp.MustCompile(`(?i)^Item\s+Description\s+Qty`)
	bomRowRe    = regexp.MustCompile(`(?i)^(.*?)\s+([0-9]+(?:\.[0-9]+)?)\s*(ea|hr|pcs|pc|lb|ft|each)\b`)
)

// ParseBOMText parses text produced by the external extraction service
// into a reviewable draft. The expected shape is one header line
// ("PARTNUMBER - Description"), an optional "Cost: $X.XX" line, then a
// component table introduced by an "Item Description Qty" header with
// one "<part> <description> <qty><unit>" row per component. Labor rows
// are priced into the assembly, not manufactured, and are dropped.
func ParseBOMText(text string) (*BOMDraft, error) {
	draft := &BOMDraft{State: DraftReview}
	inTable := false

	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}

		if draft.PartNumber == "" {
			m := bomHeaderRe.FindStringSubmatch(line)
			if m == nil {
				continue
			}
			draft.PartNumber = m[1]
			draft.Description = strings.TrimSpace(m[2])
			continue
		}

		if m := bomCostRe.FindStringSubmatch(line); m != nil {
			if cost, err := strconv.ParseFloat(m[1], 64); err == nil {
				draft.Cost = cost
			}
			continue
		}

		if bomTableRe.MatchString(line) {
			inTable = true
			continue
		}
		if !inTable {
			continue
		}

		m := bomRowRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		tokens := strings.Fields(m[1])
		if len(tokens) == 0 {
			continue
		}
		if strings.EqualFold(tokens[0], "labor") {
			continue
		}
		qty, err := strconv.ParseFloat(m[2], 64)
		if err != nil {
			continue
		}
		draft.Components = append(draft.Components, BOMDraftLine{
			PartNumber:  tokens[0],
			Description: strings.Join(tokens[1:], " "),
			Quantity:    qty,
			Unit:        strings.ToLower(m[3]),
		})
	}

	if draft.PartNumber == "" {
		return nil, &ValidationError{Field: "text", Msg: "no assembly header line found"}
	}
	if len(draft.Components) == 0 {
		return nil, &ValidationError{Field: "text", Msg: "no component rows found"}
	}
	return draft, nil
}
