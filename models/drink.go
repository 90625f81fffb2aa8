package models

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Ingredient is one component line of a drink, in display order.
type Ingredient struct {
	Item   string `json:"item" bson:"item" validate:"required"`
	Amount string `json:"amount" bson:"amount" validate:"required"`
}

// Drink is the canonical menu entity. ABV is a plain integer percentage and
// korean_name is optional; documents in any other shape are rejected at the
// boundary rather than coerced.
type Drink struct {
	ID           string       `json:"id,omitempty" bson:"-"`
	Name         string       `json:"name,omitempty" bson:"name,omitempty"`
	KoreanName   string       `json:"korean_name,omitempty" bson:"korean_name,omitempty"`
	ABV          int          `json:"abv" bson:"abv"`
	Description  string       `json:"description" bson:"description" validate:"required"`
	Base         string       `json:"base" bson:"base" validate:"required"`
	Glass        string       `json:"glass" bson:"glass" validate:"required"`
	Ingredients  []Ingredient `json:"ingredients" bson:"ingredients" validate:"required,dive"`
	Ice          string       `json:"ice" bson:"ice" validate:"required"`
	ShakeOrStir  string       `json:"shake_or_stir" bson:"shake_or_stir" validate:"required"`
	Available    bool         `json:"available" bson:"available"`
	Instructions []string     `json:"instructions" bson:"instructions"`
	Tags         []string     `json:"tags" bson:"tags"`
	ImageURL     string       `json:"image_url" bson:"image_url"`
}

// NewDrink returns a Drink carrying the schema defaults. Handlers decode the
// request body over this value, so absent fields keep their defaults while an
// explicit "available": false sticks.
func NewDrink() Drink {
	return Drink{
		Available:    true,
		Instructions: []string{},
		Tags:         []string{},
	}
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// report violations under the wire field names
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks the drink against the canonical schema and applies the
// normalizations that belong to validation time: nil slice defaults and
// set-like tags. The returned error, if any, is a validator.ValidationErrors.
func (d *Drink) Validate() error {
	if err := validate.Struct(d); err != nil {
		return err
	}
	if d.Instructions == nil {
		d.Instructions = []string{}
	}
	d.Tags = NormalizeTags(d.Tags)
	return nil
}

// ValidationMessages flattens a validation error into one message per
// violated field constraint.
func ValidationMessages(err error) []string {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return []string{err.Error()}
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fe.Field()+" is required")
		default:
			msgs = append(msgs, fe.Field()+" failed "+fe.Tag()+" validation")
		}
	}
	return msgs
}

// NormalizeTags lowercases, trims, and de-duplicates tags while keeping
// first-seen order.
func NormalizeTags(input []string) []string {
	tags := []string{}
	seen := make(map[string]bool)
	for _, t := range input {
		tag := strings.ToLower(strings.TrimSpace(t))
		if tag == "" || seen[tag] {
			continue
		}
		tags = append(tags, tag)
		seen[tag] = true
	}
	return tags
}
