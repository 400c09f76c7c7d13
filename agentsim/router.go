package agentsim

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/openfloorcontrol/showroom/agent"
	"github.com/openfloorcontrol/showroom/catalog"
	"github.com/openfloorcontrol/showroom/surface"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/sirupsen/logrus"
)

// HelpText is the reply to anything the router does not recognise.
const HelpText = "I can search the inventory (\"find me a Toyota\"), compare two cars " +
	"(\"compare the Camry and the Accord\"), book a test drive (\"book a test drive\"), " +
	"or take an offer (\"offer $26,000 for the Camry\")."

// tableColumns are the columns of a search result table.
var tableColumns = []string{"ID", "Make", "Model", "Year", "Price"}

// compareFallback is compared when the text names fewer than two cars.
var compareFallback = []string{"1", "2"}

// Router turns one request text into one reply text: an envelope or prose.
type Router struct {
	tools  catalog.Provider
	cat    *catalog.Catalog // for resolving cars named in text
	schema *jsonschema.Schema
	log    *logrus.Entry
	newID  func() string
}

// NewRouter creates a router answering from tools. cat resolves makes,
// models and ids mentioned in free text.
func NewRouter(tools catalog.Provider, cat *catalog.Catalog, log *logrus.Entry) (*Router, error) {
	schema, err := surface.CompileSchema("https://showroom.local/schemas/envelope.json", surface.EnvelopeSchema)
	if err != nil {
		return nil, fmt.Errorf("compile envelope schema: %w", err)
	}
	return &Router{tools: tools, cat: cat, schema: schema, log: log, newID: uuid.NewString}, nil
}

// Respond answers one request.
func (r *Router) Respond(text string) (string, error) {
	lower := strings.ToLower(text)
	switch {
	case strings.Contains(text, agent.EventPrefix):
		return r.handleEvent(text), nil
	case strings.Contains(lower, "negotiate") || strings.Contains(lower, "offer"):
		return r.negotiate(text)
	case strings.Contains(lower, "search") || strings.Contains(lower, "find"):
		return r.search(text)
	case strings.Contains(lower, "compare"):
		return r.compare(text)
	case strings.Contains(lower, "book") && !strings.Contains(lower, "form"):
		return r.bookingForm(text)
	default:
		return HelpText, nil
	}
}

func (r *Router) search(text string) (string, error) {
	args := map[string]any{}
	if brand := r.cat.MakeInText(text); brand != "" {
		args["make"] = brand
	}
	var rows []catalog.Listing
	if err := catalog.CallInto(r.tools, catalog.ToolSearch, args, &rows); err != nil {
		return "", err
	}
	r.log.WithFields(logrus.Fields{"tool": catalog.ToolSearch, "results": len(rows)}).Info("search")
	return r.envelope(surface.TypeTable, map[string]any{
		"columns": tableColumns,
		"rows":    rows,
	})
}

// offerRe matches a dollar amount: "$26,000", "26,000" or "26000".
var offerRe = regexp.MustCompile(`\$\s?\d[\d,]*(?:\.\d+)?|\b\d{1,3}(?:,\d{3})+\b|\b\d{4,}\b`)

func (r *Router) negotiate(text string) (string, error) {
	amount := offerRe.FindString(text)
	// Keep the amount from being read as a car id.
	ids := r.cat.FindInText(strings.Replace(text, amount, " ", 1), 1)
	if len(ids) == 0 {
		return "Which car would you like to make an offer on?", nil
	}
	if amount == "" {
		v, _ := r.cat.Get(ids[0])
		return fmt.Sprintf("What price would you like to offer for the %s %s?", v.Make, v.Model), nil
	}

	var deal catalog.Negotiation
	err := catalog.CallInto(r.tools, catalog.ToolNegotiate, map[string]any{
		"car_id":      ids[0],
		"offer_price": catalog.ParseAmount(amount),
	}, &deal)
	if err != nil {
		return "", err
	}
	r.log.WithFields(logrus.Fields{"tool": catalog.ToolNegotiate, "car": ids[0], "accepted": deal.Accepted}).Info("negotiate")
	return deal.Message, nil
}

func (r *Router) compare(text string) (string, error) {
	ids := r.cat.FindInText(text, 2)
	for _, id := range compareFallback {
		if len(ids) >= 2 {
			break
		}
		if !contains(ids, id) {
			ids = append(ids, id)
		}
	}
	var cmp catalog.Comparison
	if err := catalog.CallInto(r.tools, catalog.ToolCompare, map[string]any{"car_ids": ids}, &cmp); err != nil {
		return "", err
	}
	r.log.WithFields(logrus.Fields{"tool": catalog.ToolCompare, "ids": ids}).Info("compare")
	return r.envelope(surface.TypeCardComparison, cmp)
}

func (r *Router) bookingForm(text string) (string, error) {
	ids := r.cat.FindInText(text, 1)
	if len(ids) == 0 {
		// Default to the Tesla, like the demo.
		ids = []string{"3"}
	}
	v, ok := r.cat.Get(ids[0])
	if !ok {
		return HelpText, nil
	}
	l := r.cat.Listing(v)
	return r.envelope(surface.TypeBookingForm, surface.BookingContext{
		CarID: surface.Scalar(l.ID),
		Make:  surface.Scalar(l.Make),
		Model: surface.Scalar(l.Model),
		Year:  surface.Scalar(fmt.Sprint(l.Year)),
		Price: surface.Scalar(l.Price),
		Image: surface.Scalar(l.Image),
	})
}

func (r *Router) handleEvent(text string) string {
	ev, ok := agent.ParseEvent(text)
	if !ok {
		return "Error handling event: malformed payload"
	}
	log := r.log.WithFields(logrus.Fields{"event": ev.Type, "surfaceId": ev.SurfaceID()})
	switch ev.Type {
	case surface.EventFormSubmit:
		var booking catalog.Booking
		err := catalog.CallInto(r.tools, catalog.ToolBook, map[string]any{
			"car_id":        ev.Field("carId"),
			"customer_name": ev.Field("customer_name"),
			"date":          ev.Field("date"),
			"email":         ev.Field("email"),
		}, &booking)
		if err != nil {
			log.WithError(err).Warn("booking failed")
			return "Error handling event: " + err.Error()
		}
		log.WithField("booking", booking.ID).Info("booked")
		return booking.Confirmation()
	case surface.EventRowSelect:
		return fmt.Sprintf("User selected car %s. Ask if they want to compare or book it.", ev.Field("carId"))
	default:
		log.Info("event")
		return fmt.Sprintf("Event %s received.", ev.Type)
	}
}

// envelope builds a beginRendering envelope and validates it before it
// leaves the server.
func (r *Router) envelope(typ surface.Type, data any) (string, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return "", fmt.Errorf("marshal %s data: %w", typ, err)
	}
	b, err := json.Marshal(surface.Envelope{
		Action:      surface.BeginRendering,
		SurfaceID:   r.newID(),
		SurfaceType: typ,
		Data:        raw,
	})
	if err != nil {
		return "", err
	}

	var doc any
	if err := json.Unmarshal(b, &doc); err != nil {
		return "", err
	}
	if err := r.schema.Validate(doc); err != nil {
		r.log.WithError(err).Error("envelope failed validation")
		return "", fmt.Errorf("invalid %s envelope: %w", typ, err)
	}
	return string(b), nil
}

func contains(ids []string, id string) bool {
	for _, x := range ids {
		if x == id {
			return true
		}
	}
	return false
}
