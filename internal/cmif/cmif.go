// Package cmif reads Correspondence Metadata Interchange Format corpora
// (TEI XML with one correspDesc per letter).
package cmif

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"

	"github.com/ppiankov/herdata/internal/cache"
	"github.com/ppiankov/herdata/internal/model"
	"github.com/ppiankov/herdata/internal/util"
)

// Reference types used in a correspDesc note
const (
	RefMentionsPerson   = "cmif:mentionsPerson"
	RefMentionsBibl     = "cmif:mentionsBibl"
	RefMentionsOrg      = "cmif:mentionsOrg"
	RefHasLanguage      = "cmif:hasLanguage"
	RefAvailableAsTEI   = "cmif:isAvailableAsTEIfile"
	RefIsPublishedWith  = "cmif:isPublishedWith"
	RefHasTextBase      = "cmif:hasTextBase"
	actionSent          = "sent"
	correspDescElement  = "correspDesc"
	progressEveryLetter = 1000
)

type xmlCorrespDesc struct {
	Actions []xmlAction `xml:"correspAction"`
	Notes   []xmlNote   `xml:"note"`
}

type xmlAction struct {
	Type       string       `xml:"type,attr"`
	PersNames  []xmlNamed   `xml:"persName"`
	PlaceNames []xmlNamed   `xml:"placeName"`
	Dates      []xmlDateTag `xml:"date"`
}

type xmlNamed struct {
	Ref  string `xml:"ref,attr"`
	Text string `xml:",chardata"`
}

type xmlDateTag struct {
	When      string `xml:"when,attr"`
	NotBefore string `xml:"notBefore,attr"`
	NotAfter  string `xml:"notAfter,attr"`
}

type xmlNote struct {
	Refs []xmlRef `xml:"ref"`
}

type xmlRef struct {
	Type   string `xml:"type,attr"`
	Target string `xml:"target,attr"`
	Text   string `xml:",chardata"`
}

// Parse decodes every correspDesc of a corpus into letters, in document order
func Parse(ctx context.Context, r io.Reader, log zerolog.Logger) ([]model.Letter, error) {
	progress := util.NewProgress(log, "parsing correspondence", progressEveryLetter)

	var letters []model.Letter
	err := util.EachElement(ctx, r, correspDescElement, func(dec *xml.Decoder, start xml.StartElement) error {
		var cd xmlCorrespDesc
		if err := dec.DecodeElement(&cd, &start); err != nil {
			return fmt.Errorf("decode correspDesc %d: %w", len(letters)+1, err)
		}
		letters = append(letters, cd.letter())
		progress.Tick()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return letters, nil
}

// letter maps the decoded element onto the model. Only the first "sent"
// action and the first note are read.
func (cd *xmlCorrespDesc) letter() model.Letter {
	var l model.Letter

	for _, action := range cd.Actions {
		if action.Type != actionSent {
			continue
		}
		if len(action.PersNames) > 0 {
			p := action.PersNames[0]
			l.Sender = &model.Entity{Name: p.Text, Ref: p.Ref}
		}
		if len(action.PlaceNames) > 0 {
			p := action.PlaceNames[0]
			l.Place = &model.Entity{Name: p.Text, Ref: p.Ref}
		}
		if len(action.Dates) > 0 {
			d := action.Dates[0]
			l.Date = model.LetterDate{When: d.When, NotBefore: d.NotBefore, NotAfter: d.NotAfter}
		}
		break
	}

	if len(cd.Notes) == 0 {
		return l
	}
	m := &l.Mentions
	for _, ref := range cd.Notes[0].Refs {
		switch ref.Type {
		case RefMentionsPerson:
			m.Persons = append(m.Persons, model.Entity{Name: ref.Text, Ref: ref.Target})
		case RefMentionsBibl:
			m.Works = append(m.Works, ref.Text)
		case RefMentionsOrg:
			m.Orgs = append(m.Orgs, ref.Text)
		case RefHasLanguage:
			if ref.Target != "" {
				m.Languages = append(m.Languages, ref.Target)
			}
		case RefAvailableAsTEI:
			m.TEIFile = true
		case RefIsPublishedWith:
			m.PublishedWith = append(m.PublishedWith, ref.Target)
		case RefHasTextBase:
			if ref.Target != "" {
				m.TextBases = append(m.TextBases, ref.Target)
			}
		}
	}
	return l
}

// Publication kinds derived from isPublishedWith targets
const (
	PublishedTranscription = "transcription"
	PublishedAbstract      = "abstract"
)

// PublicationKind classifies an isPublishedWith target. Transcription wins
// when a target names both.
func PublicationKind(target string) string {
	switch {
	case strings.Contains(target, "Transcription"):
		return PublishedTranscription
	case strings.Contains(target, "Abstract"):
		return PublishedAbstract
	default:
		return ""
	}
}

// Loader reads corpora from disk through an optional cache
type Loader struct {
	cache cache.Cache
	log   zerolog.Logger
}

// NewLoader creates a loader; c may be nil
func NewLoader(c cache.Cache, log zerolog.Logger) *Loader {
	return &Loader{cache: c, log: log}
}

// Load parses the corpus at path, reusing a cached decode when the file is unchanged
func (l *Loader) Load(ctx context.Context, path string) ([]model.Letter, error) {
	key, err := cache.FileKey("cmif", path)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}

	letters, hit, err := cache.LoadJSON(l.cache, key, 0, l.log, func() ([]model.Letter, error) {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		return Parse(ctx, f, l.log)
	})
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}

	l.log.Info().
		Str("file", path).
		Int("letters", len(letters)).
		Bool("cached", hit).
		Msg("loaded correspondence corpus")
	return letters, nil
}
