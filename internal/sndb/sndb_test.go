package sndb

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/herdata/internal/cache"
)

func writeTable(t *testing.T, dir, name, items string) {
	t.Helper()
	doc := `<?xml version="1.0" encoding="UTF-8"?>` + "\n<DATA>" + items + "</DATA>"
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(doc), 0644))
}

func newLoader(dir string, c cache.Cache) *Loader {
	return NewLoader(func(table string) string { return filepath.Join(dir, table) }, c, zerolog.Nop())
}

func TestReadTable(t *testing.T) {
	dir := t.TempDir()
	writeTable(t, dir, "geo_main.xml", `
		<ITEM><ID>10</ID><LFDNR>0</LFDNR><BEZEICHNUNG>Weimar</BEZEICHNUNG></ITEM>
		<ITEM><ID>10</ID><LFDNR>1</LFDNR><BEZEICHNUNG>Vimaria</BEZEICHNUNG></ITEM>
		<ITEM><ID>11</ID><BEZEICHNUNG> Jena </BEZEICHNUNG></ITEM>`)

	rows, err := ReadTable(context.Background(), filepath.Join(dir, "geo_main.xml"))
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, "10", rows[0].ID())
	assert.True(t, rows[0].IsMain())
	assert.False(t, rows[1].IsMain())
	assert.True(t, rows[2].IsMain(), "missing LFDNR counts as main")
	assert.Equal(t, "Jena", rows[2].Get("BEZEICHNUNG"))
	assert.Equal(t, "", rows[2].Get("LATITUDE"))
}

func TestLoader_DropsRowsWithoutID(t *testing.T) {
	dir := t.TempDir()
	writeTable(t, dir, "pers_koerp_berufe.xml", `
		<ITEM><ID>1</ID><BERUF>Schriftstellerin</BERUF></ITEM>
		<ITEM><BERUF>Malerin</BERUF></ITEM>
		<ITEM><ID></ID><BERUF>Sängerin</BERUF></ITEM>`)

	occs, err := newLoader(dir, nil).Occupations(context.Background(), "pers_koerp_berufe.xml")
	require.NoError(t, err)
	assert.Equal(t, []Occupation{{PersonID: "1", Label: "Schriftstellerin"}}, occs)
}

func TestLoader_TypedTables(t *testing.T) {
	dir := t.TempDir()
	writeTable(t, dir, "pers_koerp_main.xml", `
		<ITEM><ID>1</ID><LFDNR>0</LFDNR><NACHNAME>Schopenhauer</NACHNAME><VORNAMEN>Johanna</VORNAMEN></ITEM>
		<ITEM><ID>2</ID><LFDNR>0</LFDNR><NACHNAME>Stein</NACHNAME><VORNAMEN>Charlotte</VORNAMEN><TITEL>von</TITEL></ITEM>
		<ITEM><ID>3</ID><LFDNR>0</LFDNR></ITEM>`)
	writeTable(t, dir, "pers_koerp_indiv.xml", `
		<ITEM><ID>1</ID><SEXUS>w</SEXUS><GND>118610066</GND></ITEM>
		<ITEM><ID>4</ID><SEXUS>m</SEXUS></ITEM>`)
	writeTable(t, dir, "pers_koerp_orte.xml", `
		<ITEM><ID>1</ID><SNDB_ID>10</SNDB_ID><ART>Wirkungsort</ART></ITEM>
		<ITEM><ID>1</ID><SNDB_ID>11</SNDB_ID></ITEM>`)
	writeTable(t, dir, "geo_indiv.xml", `
		<ITEM><ID>10</ID><LATITUDE>50.98</LATITUDE><LONGITUDE>11.33</LONGITUDE></ITEM>`)
	writeTable(t, dir, "pers_koerp_datierungen.xml", `
		<ITEM><ID>1</ID><ART>Geburtsdatum</ART><JAHR>1766</JAHR></ITEM>`)

	ctx := context.Background()
	l := newLoader(dir, nil)

	names, err := l.PersonNames(ctx, "pers_koerp_main.xml")
	require.NoError(t, err)
	require.Len(t, names, 3)
	assert.Equal(t, "Johanna Schopenhauer", names[0].DisplayName())
	assert.Equal(t, "Charlotte Stein von", names[1].DisplayName())
	assert.Equal(t, "", names[2].DisplayName())

	indivs, err := l.PersonIndivs(ctx, "pers_koerp_indiv.xml")
	require.NoError(t, err)
	assert.Equal(t, PersonIndiv{ID: "1", Sex: "w", GND: "118610066"}, indivs[0])

	links, err := l.PlaceLinks(ctx, "pers_koerp_orte.xml")
	require.NoError(t, err)
	assert.Equal(t, "Wirkungsort", links[0].Kind)
	assert.Equal(t, DefaultPlaceKind, links[1].Kind)

	coords, err := l.PlaceCoords(ctx, "geo_indiv.xml")
	require.NoError(t, err)
	assert.Equal(t, PlaceCoord{ID: "10", Lat: "50.98", Lon: "11.33"}, coords[0])

	dates, err := l.LifeDates(ctx, "pers_koerp_datierungen.xml")
	require.NoError(t, err)
	assert.Equal(t, LifeDate{ID: "1", Kind: KindBirth, Year: "1766"}, dates[0])
}

func TestLoader_MissingTable(t *testing.T) {
	_, err := newLoader(t.TempDir(), nil).PlaceNames(context.Background(), "geo_main.xml")
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.Contains(t, err.Error(), "load geo_main.xml")
}

func TestLoader_CachedRows(t *testing.T) {
	dir := t.TempDir()
	writeTable(t, dir, "geo_main.xml", `<ITEM><ID>10</ID><BEZEICHNUNG>Weimar</BEZEICHNUNG></ITEM>`)

	c := cache.NewMemoryCache(0, 0)
	l := newLoader(dir, c)

	for range 2 {
		names, err := l.PlaceNames(context.Background(), "geo_main.xml")
		require.NoError(t, err)
		assert.Equal(t, []PlaceName{{ID: "10", Main: true, Name: "Weimar"}}, names)
	}
	assert.Equal(t, 1, c.Len())
}
