package catalog

import (
	"fmt"
	"math"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/openfloorcontrol/showroom/blueprint"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/unicode/norm"
)

// Vehicle is one inventory entry.
type Vehicle struct {
	ID       string
	Make     string
	Model    string
	Year     int
	Price    int
	Color    string
	Type     string
	Features []string
	Image    string
}

// Listing is a vehicle as shown to users: price formatted, image resolved.
type Listing struct {
	ID       string   `json:"id"`
	Make     string   `json:"make"`
	Model    string   `json:"model"`
	Year     int      `json:"year"`
	Price    string   `json:"price"`
	Color    string   `json:"color"`
	Type     string   `json:"type"`
	Features []string `json:"features"`
	Image    string   `json:"image"`
}

// Comparison is the result of compare_cars.
type Comparison struct {
	Cars    []Listing `json:"cars"`
	Verdict string    `json:"verdict,omitempty"`
}

// Booking is a confirmed test-drive appointment.
type Booking struct {
	ID           string    `json:"id"`
	CarID        string    `json:"carId"`
	CustomerName string    `json:"customerName"`
	Date         string    `json:"date"`
	Email        string    `json:"email,omitempty"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Confirmation is the prose returned to the user for a booking.
func (b Booking) Confirmation() string {
	return fmt.Sprintf("Appointment confirmed. Status: %s.", b.Status)
}

// Negotiation is the result of negotiate_price.
type Negotiation struct {
	CarID        string `json:"carId"`
	ListPrice    string `json:"listPrice"`
	Offer        string `json:"offer"`
	Accepted     bool   `json:"accepted"`
	CounterOffer string `json:"counterOffer,omitempty"`
	Message      string `json:"message"`
}

// negotiationFloorPct is the share of the list price the dealer accepts.
const negotiationFloorPct = 90

// Catalog is a fixed, read-only vehicle inventory.
type Catalog struct {
	vehicles []Vehicle
	printer  *message.Printer
	now      func() time.Time
}

var _ Provider = (*Catalog)(nil)

// New creates a catalog over vehicles.
func New(vehicles []Vehicle) *Catalog {
	return &Catalog{
		vehicles: slices.Clone(vehicles),
		printer:  message.NewPrinter(language.English),
		now:      time.Now,
	}
}

// FromBlueprint builds the catalog configured in a blueprint, or the demo
// inventory when none is configured.
func FromBlueprint(bp *blueprint.Blueprint) *Catalog {
	if len(bp.Catalog) == 0 {
		return Default()
	}
	vs := make([]Vehicle, len(bp.Catalog))
	for i, v := range bp.Catalog {
		vs[i] = Vehicle{
			ID: v.ID, Make: v.Make, Model: v.Model, Year: v.Year, Price: v.Price,
			Color: v.Color, Type: v.Type, Features: v.Features, Image: v.Image,
		}
	}
	return New(vs)
}

// Default returns the demo inventory.
func Default() *Catalog {
	return New([]Vehicle{
		{ID: "1", Make: "Toyota", Model: "Camry", Year: 2024, Price: 28400, Color: "Silver", Type: "Sedan", Features: []string{"Reliability", "Hybrid option", "Apple CarPlay"}},
		{ID: "2", Make: "Honda", Model: "Accord", Year: 2024, Price: 29500, Color: "Blue", Type: "Sedan", Features: []string{"Spacious interior", "Honda Sensing", "Turbo engine"}},
		{ID: "3", Make: "Tesla", Model: "Model 3", Year: 2023, Price: 40240, Color: "White", Type: "Electric", Features: []string{"Autopilot", "Long range battery", "Minimalist cabin"}},
		{ID: "4", Make: "Ford", Model: "F-150", Year: 2024, Price: 36570, Color: "Black", Type: "Truck", Features: []string{"Towing capacity", "Pro Power Onboard", "SYNC 4"}},
		{ID: "5", Make: "BMW", Model: "3 Series", Year: 2023, Price: 44500, Color: "Gray", Type: "Sedan", Features: []string{"Sport handling", "iDrive", "Premium interior"}},
		{ID: "6", Make: "Mercedes-Benz", Model: "C-Class", Year: 2024, Price: 47000, Color: "Black", Type: "Sedan", Features: []string{"Luxury cabin", "MBUX", "Driver assistance"}},
		{ID: "7", Make: "Hyundai", Model: "Tucson", Year: 2024, Price: 27500, Color: "Red", Type: "SUV", Features: []string{"Long warranty", "Hybrid option", "Digital key"}},
		{ID: "8", Make: "Kia", Model: "Sportage", Year: 2024, Price: 27990, Color: "Green", Type: "SUV", Features: []string{"Bold styling", "Panoramic display", "AWD"}},
	})
}

// Len returns the number of vehicles.
func (c *Catalog) Len() int { return len(c.vehicles) }

// Get returns the vehicle with the given id.
func (c *Catalog) Get(id string) (Vehicle, bool) {
	for _, v := range c.vehicles {
		if v.ID == id {
			return v, true
		}
	}
	return Vehicle{}, false
}

// Listing formats a vehicle for display.
func (c *Catalog) Listing(v Vehicle) Listing {
	image := v.Image
	if image == "" {
		image = imagePath(v)
	}
	return Listing{
		ID:       v.ID,
		Make:     v.Make,
		Model:    v.Model,
		Year:     v.Year,
		Price:    c.FormatPrice(v.Price),
		Color:    v.Color,
		Type:     v.Type,
		Features: slices.Clone(v.Features),
		Image:    image,
	}
}

// FormatPrice renders whole dollars with thousands separators ($25,000).
func (c *Catalog) FormatPrice(dollars int) string {
	return c.printer.Sprintf("$%d", dollars)
}

func imagePath(v Vehicle) string {
	model := strings.NewReplacer(" ", "", "-", "").Replace(strings.ToLower(v.Model))
	return fmt.Sprintf("assets/%s_%s.jpg", strings.ToLower(v.Make), model)
}

// Search filters by make, model and body type; empty filters match all.
// Matching ignores case.
func (c *Catalog) Search(brand, model, typ string) []Listing {
	out := []Listing{}
	for _, v := range c.vehicles {
		if brand != "" && !strings.EqualFold(v.Make, brand) {
			continue
		}
		if model != "" && !strings.EqualFold(v.Model, model) {
			continue
		}
		if typ != "" && !strings.EqualFold(v.Type, typ) {
			continue
		}
		out = append(out, c.Listing(v))
	}
	return out
}

// Compare returns the first two known vehicles among ids with a verdict.
// Fewer than two ids yields an empty comparison.
func (c *Catalog) Compare(ids []string) Comparison {
	if len(ids) < 2 {
		return Comparison{Cars: []Listing{}}
	}
	var found []Vehicle
	for _, id := range ids[:2] {
		if v, ok := c.Get(id); ok {
			found = append(found, v)
		}
	}
	cmp := Comparison{Cars: []Listing{}, Verdict: "Comparison not available."}
	for _, v := range found {
		cmp.Cars = append(cmp.Cars, c.Listing(v))
	}
	if len(found) == 2 {
		a, b := found[0], found[1]
		cmp.Verdict = fmt.Sprintf("Comparing %s %s vs %s %s. %s is known for %s, while %s offers %s.",
			a.Make, a.Model, b.Make, b.Model, a.Make, firstFeature(a), b.Make, firstFeature(b))
	}
	return cmp
}

func firstFeature(v Vehicle) string {
	if len(v.Features) == 0 {
		return "its value"
	}
	return strings.ToLower(v.Features[0])
}

// Book confirms a test drive. Any car id is accepted; the name defaults to
// a demo customer when the form did not collect it.
func (c *Catalog) Book(carID, customerName, date, email string) (Booking, error) {
	if strings.TrimSpace(carID) == "" {
		return Booking{}, fmt.Errorf("book: car_id is required")
	}
	if strings.TrimSpace(date) == "" {
		return Booking{}, fmt.Errorf("book: date is required")
	}
	if customerName == "" {
		customerName = "Demo User"
	}
	return Booking{
		ID:           uuid.NewString(),
		CarID:        carID,
		CustomerName: customerName,
		Date:         date,
		Email:        email,
		Status:       "Confirmed",
		CreatedAt:    c.now().UTC(),
	}, nil
}

// Negotiate answers a price offer. Offers of at least 90% of the list
// price are accepted; lower offers get a counter-offer at that floor.
func (c *Catalog) Negotiate(carID string, offer float64) (Negotiation, error) {
	v, ok := c.Get(carID)
	if !ok {
		return Negotiation{}, fmt.Errorf("negotiate: unknown car %q", carID)
	}
	if offer <= 0 {
		return Negotiation{}, fmt.Errorf("negotiate: offer_price must be positive")
	}
	dollars := int(math.Round(offer))
	floor := (v.Price*negotiationFloorPct + 99) / 100
	n := Negotiation{
		CarID:     v.ID,
		ListPrice: c.FormatPrice(v.Price),
		Offer:     c.FormatPrice(dollars),
		Accepted:  dollars >= floor,
	}
	if n.Accepted {
		n.Message = fmt.Sprintf("Your offer of %s for the %s %s is accepted.", n.Offer, v.Make, v.Model)
		return n, nil
	}
	n.CounterOffer = c.FormatPrice(floor)
	n.Message = fmt.Sprintf("Your offer of %s for the %s %s is too low. The best we can do is %s.",
		n.Offer, v.Make, v.Model, n.CounterOffer)
	return n, nil
}

var idRe = regexp.MustCompile(`\b\d+\b`)

// FindInText resolves up to limit vehicle ids mentioned in free text:
// explicit ids first, then models, then makes (one vehicle per make).
func (c *Catalog) FindInText(text string, limit int) []string {
	text = fold(text)
	var ids []string
	add := func(id string) {
		if !slices.Contains(ids, id) {
			ids = append(ids, id)
		}
	}

	for _, id := range idRe.FindAllString(text, -1) {
		if _, ok := c.Get(id); ok {
			add(id)
		}
	}
	if len(ids) >= limit {
		return ids[:limit]
	}

	for _, v := range c.vehicles {
		if strings.Contains(text, fold(v.Model)) {
			add(v.ID)
		}
	}

	if len(ids) < limit {
		for _, v := range c.vehicles {
			if !strings.Contains(text, fold(v.Make)) || slices.Contains(ids, v.ID) {
				continue
			}
			if c.hasMake(ids, v.Make) {
				continue
			}
			add(v.ID)
		}
	}
	if len(ids) > limit {
		ids = ids[:limit]
	}
	return ids
}

func (c *Catalog) hasMake(ids []string, brand string) bool {
	for _, id := range ids {
		if v, ok := c.Get(id); ok && v.Make == brand {
			return true
		}
	}
	return false
}

// MakeInText returns the first catalog make mentioned in text.
func (c *Catalog) MakeInText(text string) string {
	text = fold(text)
	for _, v := range c.vehicles {
		if strings.Contains(text, fold(v.Make)) {
			return v.Make
		}
		// "mercedes" for "Mercedes-Benz"
		if first, _, ok := strings.Cut(fold(v.Make), "-"); ok && strings.Contains(text, first) {
			return v.Make
		}
	}
	return ""
}

// fold normalizes text for keyword matching.
func fold(s string) string {
	return strings.ToLower(norm.NFC.String(s))
}
