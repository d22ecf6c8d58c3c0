package packager

import (
	"crypto/sha1"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"strconv"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// fieldSeparator joins note fields in the flds column, per the Anki
// collection format.
const fieldSeparator = "\x1f"

// collectionSchemaVersion is the Anki collection schema this writer emits.
const collectionSchemaVersion = 11

// collectionSchema is the table layout of a schema-11 collection.anki2
// database as created by Anki desktop.
const collectionSchema = `
CREATE TABLE col (
    id integer PRIMARY KEY,
    crt integer NOT NULL,
    mod integer NOT NULL,
    scm integer NOT NULL,
    ver integer NOT NULL,
    dty integer NOT NULL,
    usn integer NOT NULL,
    ls integer NOT NULL,
    conf text NOT NULL,
    models text NOT NULL,
    decks text NOT NULL,
    dconf text NOT NULL,
    tags text NOT NULL
);
CREATE TABLE notes (
    id integer PRIMARY KEY,
    guid text NOT NULL,
    mid integer NOT NULL,
    mod integer NOT NULL,
    usn integer NOT NULL,
    tags text NOT NULL,
    flds text NOT NULL,
    sfld integer NOT NULL,
    csum integer NOT NULL,
    flags integer NOT NULL,
    data text NOT NULL
);
CREATE TABLE cards (
    id integer PRIMARY KEY,
    nid integer NOT NULL,
    did integer NOT NULL,
    ord integer NOT NULL,
    mod integer NOT NULL,
    usn integer NOT NULL,
    type integer NOT NULL,
    queue integer NOT NULL,
    due integer NOT NULL,
    ivl integer NOT NULL,
    factor integer NOT NULL,
    reps integer NOT NULL,
    lapses integer NOT NULL,
    left integer NOT NULL,
    odue integer NOT NULL,
    odid integer NOT NULL,
    flags integer NOT NULL,
    data text NOT NULL
);
CREATE TABLE revlog (
    id integer PRIMARY KEY,
    cid integer NOT NULL,
    usn integer NOT NULL,
    ease integer NOT NULL,
    ivl integer NOT NULL,
    lastIvl integer NOT NULL,
    factor integer NOT NULL,
    time integer NOT NULL,
    type integer NOT NULL
);
CREATE TABLE graves (
    usn integer NOT NULL,
    oid integer NOT NULL,
    type integer NOT NULL
);
CREATE INDEX ix_notes_usn ON notes (usn);
CREATE INDEX ix_cards_usn ON cards (usn);
CREATE INDEX ix_revlog_usn ON revlog (usn);
CREATE INDEX ix_cards_nid ON cards (nid);
CREATE INDEX ix_cards_sched ON cards (did, queue, due);
CREATE INDEX ix_revlog_cid ON revlog (cid);
CREATE INDEX ix_notes_csum ON notes (csum);
`

// cardCSS is the shared stylesheet for all generated note models.
const cardCSS = `.card {
  font-family: arial;
  font-size: 20px;
  text-align: center;
  color: black;
  background-color: white;
}
.title { font-weight: bold; margin-bottom: 8px; }
.context, .hint { color: #555; font-style: italic; margin-top: 8px; }
.code { text-align: left; }
.explanation { margin-top: 12px; }
.mnemonics { color: #357; margin-top: 8px; }
.related, .sources { font-size: 14px; color: #777; margin-top: 12px; }`

// deterministicID derives a stable positive 63-bit id from a name, so
// re-exporting the same deck updates it in Anki instead of duplicating it.
func deterministicID(kind, name string) int64 {
	h := fnv.New64a()
	h.Write([]byte(kind))
	h.Write([]byte(name))
	return int64(h.Sum64() & 0x7fffffffffffffff)
}

// fieldChecksum is the Anki field checksum: the first 8 hex digits of the
// SHA1 of the sort field, as an integer.
func fieldChecksum(sfld string) int64 {
	sum := sha1.Sum([]byte(sfld))
	digest := hex.EncodeToString(sum[:])
	csum, _ := strconv.ParseInt(digest[:8], 16, 64)
	return csum
}

// noteGUID derives a stable note identity from the field content, so a
// re-imported deck updates notes instead of duplicating them.
func noteGUID(flds string) string {
	sum := sha1.Sum([]byte(flds))
	return hex.EncodeToString(sum[:])[:10]
}

// ankiNote is one rendered note destined for the notes/cards tables.
type ankiNote struct {
	Front string
	Back  string
	Tags  string
}

// writeCollection creates the schema-11 collection database at path and
// fills it with one model, one deck, and the given notes (one card each).
func writeCollection(path, deckName string, notes []ankiNote) error {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("create collection database: %w", err)
	}
	defer db.Close()

	if _, err := db.Exec(collectionSchema); err != nil {
		return fmt.Errorf("create collection schema: %w", err)
	}

	now := time.Now()
	nowSec := now.Unix()
	nowMilli := now.UnixMilli()
	modelID := deterministicID("model", deckName)
	deckID := deterministicID("deck", deckName)

	conf, err := collectionConf(modelID)
	if err != nil {
		return err
	}
	models, err := collectionModels(modelID, deckID, nowSec)
	if err != nil {
		return err
	}
	decks, err := collectionDecks(deckID, deckName, nowSec)
	if err != nil {
		return err
	}
	dconf, err := collectionDconf()
	if err != nil {
		return err
	}

	// crt is the collection creation day at 4am, per Anki convention.
	crt := time.Date(now.Year(), now.Month(), now.Day(), 4, 0, 0, 0, now.Location()).Unix()

	if _, err := db.Exec(`
		INSERT INTO col (id, crt, mod, scm, ver, dty, usn, ls, conf, models, decks, dconf, tags)
		VALUES (1, ?, ?, ?, ?, 0, 0, 0, ?, ?, ?, ?, '{}')
	`, crt, nowMilli, nowMilli, collectionSchemaVersion, conf, models, decks, dconf); err != nil {
		return fmt.Errorf("insert collection row: %w", err)
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin note insert: %w", err)
	}
	defer tx.Rollback()

	for i, note := range notes {
		noteID := nowMilli + int64(i)
		cardID := nowMilli + int64(len(notes)+i)
		flds := note.Front + fieldSeparator + note.Back

		if _, err := tx.Exec(`
			INSERT INTO notes (id, guid, mid, mod, usn, tags, flds, sfld, csum, flags, data)
			VALUES (?, ?, ?, ?, -1, ?, ?, ?, ?, 0, '')
		`, noteID, noteGUID(flds), modelID, nowSec, note.Tags, flds, note.Front, fieldChecksum(note.Front)); err != nil {
			return fmt.Errorf("insert note %d: %w", i, err)
		}

		if _, err := tx.Exec(`
			INSERT INTO cards (id, nid, did, ord, mod, usn, type, queue, due, ivl,
			                   factor, reps, lapses, left, odue, odid, flags, data)
			VALUES (?, ?, ?, 0, ?, -1, 0, 0, ?, 0, 0, 0, 0, 0, 0, 0, 0, '')
		`, cardID, noteID, deckID, nowSec, i+1); err != nil {
			return fmt.Errorf("insert card %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit notes: %w", err)
	}
	return nil
}

func collectionConf(modelID int64) (string, error) {
	return marshalJSON(map[string]any{
		"nextPos":       1,
		"estTimes":      true,
		"activeDecks":   []int64{1},
		"sortType":      "noteFld",
		"timeLim":       0,
		"sortBackwards": false,
		"addToCur":      true,
		"curDeck":       1,
		"newBury":       true,
		"newSpread":     0,
		"dueCounts":     true,
		"curModel":      strconv.FormatInt(modelID, 10),
		"collapseTime":  1200,
	})
}

func collectionModels(modelID, deckID, nowSec int64) (string, error) {
	field := func(name string, ord int) map[string]any {
		return map[string]any{
			"name":   name,
			"ord":    ord,
			"sticky": false,
			"rtl":    false,
			"font":   "Arial",
			"size":   20,
			"media":  []string{},
		}
	}

	model := map[string]any{
		"id":    modelID,
		"name":  "Generated Basic",
		"type":  0,
		"mod":   nowSec,
		"usn":   -1,
		"sortf": 0,
		"did":   deckID,
		"tmpls": []map[string]any{{
			"name":  "Card 1",
			"ord":   0,
			"qfmt":  "{{Front}}",
			"afmt":  "{{FrontSide}}<hr id=answer>{{Back}}",
			"did":   nil,
			"bqfmt": "",
			"bafmt": "",
		}},
		"flds":      []map[string]any{field("Front", 0), field("Back", 1)},
		"css":       cardCSS,
		"latexPre":  "\\documentclass[12pt]{article}\n\\special{papersize=3in,5in}\n\\usepackage[utf8]{inputenc}\n\\usepackage{amssymb,amsmath}\n\\pagestyle{empty}\n\\setlength{\\parindent}{0in}\n\\begin{document}\n",
		"latexPost": "\\end{document}",
		"latexsvg":  false,
		"req":       []any{[]any{0, "any", []int{0}}},
		"tags":      []string{},
		"vers":      []string{},
	}

	return marshalJSON(map[string]any{
		strconv.FormatInt(modelID, 10): model,
	})
}

func collectionDecks(deckID int64, deckName string, nowSec int64) (string, error) {
	deck := func(id int64, name string) map[string]any {
		return map[string]any{
			"id":               id,
			"name":             name,
			"desc":             "",
			"mod":              nowSec,
			"usn":              -1,
			"collapsed":        false,
			"browserCollapsed": false,
			"newToday":         []int{0, 0},
			"revToday":         []int{0, 0},
			"lrnToday":         []int{0, 0},
			"timeToday":        []int{0, 0},
			"dyn":              0,
			"extendNew":        0,
			"extendRev":        0,
			"conf":             1,
		}
	}

	decks := map[string]any{"1": deck(1, "Default")}
	decks[strconv.FormatInt(deckID, 10)] = deck(deckID, deckName)
	return marshalJSON(decks)
}

func collectionDconf() (string, error) {
	return marshalJSON(map[string]any{
		"1": map[string]any{
			"id":       1,
			"name":     "Default",
			"mod":      0,
			"usn":      0,
			"maxTaken": 60,
			"autoplay": true,
			"timer":    0,
			"replayq":  true,
			"dyn":      false,
			"new": map[string]any{
				"bury":          true,
				"delays":        []int{1, 10},
				"initialFactor": 2500,
				"ints":          []int{1, 4, 7},
				"order":         1,
				"perDay":        20,
				"separate":      true,
			},
			"rev": map[string]any{
				"bury":     true,
				"ease4":    1.3,
				"fuzz":     0.05,
				"ivlFct":   1,
				"maxIvl":   36500,
				"minSpace": 1,
				"perDay":   100,
			},
			"lapse": map[string]any{
				"delays":      []int{10},
				"leechAction": 0,
				"leechFails":  8,
				"minInt":      1,
				"mult":        0,
			},
		},
	})
}

func marshalJSON(v any) (string, error) {
	blob, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("encode collection JSON: %w", err)
	}
	return string(blob), nil
}
