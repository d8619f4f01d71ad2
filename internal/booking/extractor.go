package booking

import (
	"context"
	"strconv"
	"strings"

	"github.com/Abdul-Insighht/Barber-Salon-Chatbot-Assistent-Using-Rag/internal/catalog"
	"github.com/Abdul-Insighht/Barber-Salon-Chatbot-Assistent-Using-Rag/internal/slottime"
)

// Catalog is the read side of the barber catalog the engine consults.
type Catalog interface {
	FetchAll(ctx context.Context) []catalog.Barber
	ByID(ctx context.Context, id int64) (catalog.Barber, bool)
}

// Extracted field names reported by Extract.
const (
	FieldBarber  = "barber"
	FieldService = "service"
	FieldSlot    = "slot"
	FieldName    = "name"
	FieldPhone   = "phone"
	FieldEmail   = "email"
)

// Extract applies one customer message to bc. Rules run in a fixed order and
// later rules see what earlier ones set. Non-empty fields are never
// overwritten except the barber, and the step only moves forward. It returns
// the fields set by this message.
func Extract(ctx context.Context, cat Catalog, bc *Context, text string) []string {
	var changed []string
	lower := strings.ToLower(text)

	if selectBarber(ctx, cat, bc, lower) {
		changed = append(changed, FieldBarber)
	}

	if bc.HasBarber() && bc.Service == "" {
		if barber, ok := cat.ByID(ctx, *bc.BarberID); ok {
			for _, svc := range barber.Services {
				if strings.Contains(lower, strings.ToLower(svc)) {
					bc.Service = svc
					bc.advanceTo(StepServiceSelected)
					changed = append(changed, FieldService)
					break
				}
			}
		}
	}

	if bc.HasBarber() && bc.Slot == "" {
		if slot, ok := matchSlot(ctx, cat, *bc.BarberID, text); ok {
			bc.Slot = slot
			bc.advanceTo(StepSlotSelected)
			changed = append(changed, FieldSlot)
		}
	}

	if bc.Step == StepSlotSelected || bc.Step == StepCollectingDetails {
		if bc.CustomerName == "" {
			if v, ok := FirstMatch(NameMatchers, text); ok {
				bc.CustomerName = v
				changed = append(changed, FieldName)
			}
		}
		if bc.CustomerPhone == "" {
			if v, ok := FirstMatch(PhoneMatchers, text); ok {
				bc.CustomerPhone = v
				changed = append(changed, FieldPhone)
			}
		}
		if bc.CustomerEmail == "" {
			if v, ok := FirstMatch(EmailMatchers, text); ok {
				bc.CustomerEmail = v
				changed = append(changed, FieldEmail)
			}
		}
	}

	if bc.Step == StepSlotSelected && !bc.HasContactDetails() {
		bc.advanceTo(StepCollectingDetails)
	}

	if bc.IsComplete() && (bc.Step == StepSlotSelected || bc.Step == StepCollectingDetails) {
		bc.advanceTo(StepDetailsComplete)
	}

	return changed
}

// selectBarber applies the "id N" token and then the first barber whose name
// appears in the message. A name match overrides an id match.
func selectBarber(ctx context.Context, cat Catalog, bc *Context, lower string) bool {
	selected := false

	if m := barberIDRE.FindStringSubmatch(lower); m != nil {
		if id, err := strconv.ParseInt(m[1], 10, 64); err == nil {
			if barber, ok := cat.ByID(ctx, id); ok {
				bc.SelectBarber(barber.ID, barber.Name)
				selected = true
			}
		}
	}

	for _, barber := range cat.FetchAll(ctx) {
		name := strings.ToLower(strings.TrimSpace(barber.Name))
		if name != "" && strings.Contains(lower, name) {
			bc.SelectBarber(barber.ID, barber.Name)
			selected = true
			break
		}
	}

	if selected {
		bc.advanceTo(StepBarberSelected)
	}
	return selected
}

// matchSlot finds a typed date and time that is one of the barber's current
// display slots. Typed times that are not offered are discarded.
func matchSlot(ctx context.Context, cat Catalog, barberID int64, text string) (string, bool) {
	candidates := slotRE.FindAllString(text, -1)
	if len(candidates) == 0 {
		return "", false
	}
	barber, ok := cat.ByID(ctx, barberID)
	if !ok {
		return "", false
	}
	offered := make(map[string]bool, len(barber.Slots))
	for _, s := range barber.DisplaySlots() {
		offered[s] = true
	}
	for _, c := range candidates {
		canonical, ok := slottime.Canonical(c)
		if ok && offered[canonical] {
			return canonical, true
		}
	}
	return "", false
}
