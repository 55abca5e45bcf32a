package sndb

import (
	"context"
	"strings"
)

// PersonName is a row of pers_koerp_main.xml
type PersonName struct {
	ID        string
	Main      bool
	Surname   string // NACHNAME
	Forenames string // VORNAMEN
	Title     string // TITEL
}

// DisplayName joins forenames, surname and title, skipping empty parts
func (p PersonName) DisplayName() string {
	var parts []string
	for _, part := range []string{p.Forenames, p.Surname, p.Title} {
		if part != "" {
			parts = append(parts, part)
		}
	}
	return strings.Join(parts, " ")
}

// PersonIndiv is a row of pers_koerp_indiv.xml
type PersonIndiv struct {
	ID  string
	Sex string // SEXUS
	GND string
}

// LifeDate is a row of pers_koerp_datierungen.xml
type LifeDate struct {
	ID   string
	Kind string // ART: Geburtsdatum, Sterbedatum, ...
	Year string // JAHR
}

// Life date kinds
const (
	KindBirth = "Geburtsdatum"
	KindDeath = "Sterbedatum"
)

// PlaceLink is a row of pers_koerp_orte.xml
type PlaceLink struct {
	PersonID string
	PlaceID  string // SNDB_ID
	Kind     string // ART, "Ort" when missing
}

// DefaultPlaceKind is used for place links without ART
const DefaultPlaceKind = "Ort"

// PlaceName is a row of geo_main.xml
type PlaceName struct {
	ID   string
	Main bool
	Name string // BEZEICHNUNG
}

// PlaceCoord is a row of geo_indiv.xml; values are kept as written
type PlaceCoord struct {
	ID  string
	Lat string // LATITUDE
	Lon string // LONGITUDE
}

// Occupation is a row of pers_koerp_berufe.xml
type Occupation struct {
	PersonID string
	Label    string // BERUF
}

// PersonNames reads the person name table
func (l *Loader) PersonNames(ctx context.Context, table string) ([]PersonName, error) {
	return mapTable(ctx, l, table, func(r Row) PersonName {
		return PersonName{
			ID:        r.ID(),
			Main:      r.IsMain(),
			Surname:   r.Get("NACHNAME"),
			Forenames: r.Get("VORNAMEN"),
			Title:     r.Get("TITEL"),
		}
	})
}

// PersonIndivs reads the individual data table (sex, GND)
func (l *Loader) PersonIndivs(ctx context.Context, table string) ([]PersonIndiv, error) {
	return mapTable(ctx, l, table, func(r Row) PersonIndiv {
		return PersonIndiv{ID: r.ID(), Sex: r.Get("SEXUS"), GND: r.Get("GND")}
	})
}

// LifeDates reads the person dating table
func (l *Loader) LifeDates(ctx context.Context, table string) ([]LifeDate, error) {
	return mapTable(ctx, l, table, func(r Row) LifeDate {
		return LifeDate{ID: r.ID(), Kind: r.Get(ColKind), Year: r.Get("JAHR")}
	})
}

// PlaceLinks reads the person-to-place table
func (l *Loader) PlaceLinks(ctx context.Context, table string) ([]PlaceLink, error) {
	return mapTable(ctx, l, table, func(r Row) PlaceLink {
		return PlaceLink{PersonID: r.ID(), PlaceID: r.Get("SNDB_ID"), Kind: r.GetOr(ColKind, DefaultPlaceKind)}
	})
}

// PlaceNames reads the place name table
func (l *Loader) PlaceNames(ctx context.Context, table string) ([]PlaceName, error) {
	return mapTable(ctx, l, table, func(r Row) PlaceName {
		return PlaceName{ID: r.ID(), Main: r.IsMain(), Name: r.Get("BEZEICHNUNG")}
	})
}

// PlaceCoords reads the place coordinate table
func (l *Loader) PlaceCoords(ctx context.Context, table string) ([]PlaceCoord, error) {
	return mapTable(ctx, l, table, func(r Row) PlaceCoord {
		return PlaceCoord{ID: r.ID(), Lat: r.Get("LATITUDE"), Lon: r.Get("LONGITUDE")}
	})
}

// Occupations reads the occupation table
func (l *Loader) Occupations(ctx context.Context, table string) ([]Occupation, error) {
	return mapTable(ctx, l, table, func(r Row) Occupation {
		return Occupation{PersonID: r.ID(), Label: r.Get("BERUF")}
	})
}

func mapTable[T any](ctx context.Context, l *Loader, table string, conv func(Row) T) ([]T, error) {
	rows, err := l.Table(ctx, table)
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, len(rows))
	for _, r := range rows {
		out = append(out, conv(r))
	}
	return out, nil
}
