// Package normalizer maps parsed model payloads onto the canonical records.
package normalizer

import (
	"errors"
	"fmt"

	"ecoscan-workers/internal/models"

	"github.com/tidwall/gjson"
)

var (
	ErrShapeMismatch     = errors.New("SHAPE_MISMATCH")
	ErrNoRecommendations = fmt.Errorf("%w: no recommendation list", ErrShapeMismatch)
)

// Recommendations normalizes a recommendations payload. The payload must be an
// object holding a non-empty array under one of the list keys. Every element
// must be an object with a name; otherwise the whole payload is rejected.
func Recommendations(payload gjson.Result) ([]models.Recommendation, error) {
	if !payload.IsObject() {
		return nil, fmt.Errorf("%w: payload is not an object", ErrShapeMismatch)
	}

	items, ok := recommendationList(payload)
	if !ok {
		return nil, ErrNoRecommendations
	}

	out := make([]models.Recommendation, 0, len(items))
	for i, item := range items {
		if !item.IsObject() {
			return nil, fmt.Errorf("%w: element %d is not an object", ErrShapeMismatch, i)
		}
		rec := recommendation(item)
		if !rec.IsValid() {
			return nil, fmt.Errorf("%w: element %d has no name", ErrShapeMismatch, i)
		}
		out = append(out, rec)
	}
	return out, nil
}

func recommendationList(payload gjson.Result) ([]gjson.Result, bool) {
	for _, key := range listKeys {
		v := payload.Get(key)
		if !v.IsArray() {
			continue
		}
		if items := v.Array(); len(items) > 0 {
			return items, true
		}
	}
	return nil, false
}

func recommendation(item gjson.Result) models.Recommendation {
	rec := models.Recommendation{
		Name:        stringOf(lookup(item, fieldName)),
		Type:        stringOf(lookup(item, fieldType)),
		Distance:    stringOf(lookup(item, fieldDistance)),
		Why:         stringOf(lookup(item, fieldWhy)),
		BestTime:    stringOf(lookup(item, fieldBestTime)),
		Duration:    stringOf(lookup(item, fieldDuration)),
		Difficulty:  stringOf(lookup(item, fieldDifficulty)),
		Weather:     weather(lookup(item, fieldWeather)),
		Transport:   stringsOf(lookup(item, fieldTransport)),
		WhatToCarry: stringsOf(lookup(item, fieldWhatToCarry)),
		SafetyNotes: stringsOf(lookup(item, fieldSafetyNotes)),
		MapsURL:     stringOf(lookup(item, fieldMapsURL)),
		PhotoURL:    stringOf(lookup(item, fieldPhotoURL)),
		Address:     stringOf(lookup(item, fieldAddress)),
		Rating:      rating(item),
	}

	if rec.Type == "" {
		rec.Type = models.DefaultRecommendationType
	}
	if rec.Difficulty == "" {
		rec.Difficulty = models.DefaultDifficulty
	}
	return rec
}

func weather(v gjson.Result) *models.Weather {
	if !v.IsObject() {
		return nil
	}
	return &models.Weather{
		Condition:   stringOf(v.Get("condition")),
		Temperature: stringOf(v.Get("temperature")),
		Advice:      stringOf(v.Get("advice")),
	}
}

// rating keeps a numeric rating as sent, zero included.
func rating(item gjson.Result) *float64 {
	for _, key := range aliases[fieldRating] {
		if v := item.Get(key); v.Type == gjson.Number {
			r := v.Num
			return &r
		}
	}
	return nil
}
