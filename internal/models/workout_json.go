// ABOUTME: JSON wire format for exercises and sets.
// ABOUTME: Sets are flattened; only the active measurement variant is written.
package models

import "encoding/json"

// setWire is the flat record shape shared with the save file.
type setWire struct {
	ID               int          `json:"id"`
	Order            int          `json:"order"`
	Type             SetType      `json:"type"`
	Notes            string       `json:"notes,omitempty"`
	Reps             *int         `json:"reps,omitempty"`
	Weight           *float64     `json:"weight,omitempty"`
	WeightUnitType   WeightUnit   `json:"weightUnitType,omitempty"`
	Minutes          *int         `json:"minutes,omitempty"`
	Seconds          *int         `json:"seconds,omitempty"`
	Distance         *float64     `json:"distance,omitempty"`
	DistanceUnitType DistanceUnit `json:"distanceUnitType,omitempty"`
	Calories         *int         `json:"calories,omitempty"`
}

type exerciseWire struct {
	ID       int       `json:"id"`
	Order    int       `json:"order"`
	Name     string    `json:"name,omitempty"`
	Notes    string    `json:"notes,omitempty"`
	Category Category  `json:"category"`
	Sets     []setWire `json:"sets"`
}

func (s Set) wire() setWire {
	w := setWire{ID: s.ID, Order: s.Order, Type: s.Type, Notes: s.Notes}
	switch f := s.Fields.(type) {
	case StrengthFields:
		w.Reps = &f.Reps
		w.Weight = &f.Weight
		w.WeightUnitType = f.WeightUnitType
	case CardioFields:
		w.Minutes = &f.Minutes
		w.Seconds = &f.Seconds
		w.Distance = &f.Distance
		w.DistanceUnitType = f.DistanceUnitType
		w.Calories = f.Calories
	}
	return w
}

// set binds the flat fields to the variant matching category. Fields that
// belong to another category are dropped.
func (w setWire) set(category Category) Set {
	s := Set{ID: w.ID, Order: w.Order, Type: w.Type, Notes: w.Notes}
	switch category {
	case CategoryStrength:
		if w.Reps != nil || w.Weight != nil || w.WeightUnitType != "" {
			s.Fields = StrengthFields{
				Reps:           derefInt(w.Reps),
				Weight:         derefFloat(w.Weight),
				WeightUnitType: w.WeightUnitType,
			}
		}
	case CategoryCardio:
		if w.Minutes != nil || w.Seconds != nil || w.Distance != nil || w.DistanceUnitType != "" || w.Calories != nil {
			s.Fields = CardioFields{
				Minutes:          derefInt(w.Minutes),
				Seconds:          derefInt(w.Seconds),
				Distance:         derefFloat(w.Distance),
				DistanceUnitType: w.DistanceUnitType,
				Calories:         w.Calories,
			}
		}
	}
	return s
}

// MarshalJSON writes the flat set record.
func (s Set) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.wire())
}

// MarshalJSON writes the exercise with flattened sets.
func (e Exercise) MarshalJSON() ([]byte, error) {
	w := exerciseWire{
		ID:       e.ID,
		Order:    e.Order,
		Name:     e.Name,
		Notes:    e.Notes,
		Category: e.Category,
		Sets:     make([]setWire, len(e.Sets)),
	}
	for i, s := range e.Sets {
		w.Sets[i] = s.wire()
	}
	return json.Marshal(w)
}

// UnmarshalJSON reads an exercise, binding each set's measurements to the
// exercise's category.
func (e *Exercise) UnmarshalJSON(data []byte) error {
	var w exerciseWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*e = Exercise{
		ID:       w.ID,
		Order:    w.Order,
		Name:     w.Name,
		Notes:    w.Notes,
		Category: w.Category,
		Sets:     make([]Set, len(w.Sets)),
	}
	for i, sw := range w.Sets {
		e.Sets[i] = sw.set(w.Category)
	}
	return nil
}

func derefInt(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}

func derefFloat(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}
