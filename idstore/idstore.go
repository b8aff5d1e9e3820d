// Package idstore persists the mapping between Blue-Cloud catalogue ids
// and the portal ids assigned at creation time. The store is a plain
// semicolon-delimited text file so operators can inspect and repair it with
// a text editor; one line is appended per created resource and lines are
// never rewritten.
package idstore

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"
)

// header is the first line of every store file.
const header = "date;service_name;bluecloud_id;eosc_id;eosc_title"

// timeFormat is the timestamp layout of the date column.
const timeFormat = "2006-01-02_15:04:05"

// Entry is one stored id mapping.
type Entry struct {
	Date        string
	ServiceName string
	BlueCloudID string
	EOSCID      string
	EOSCTitle   string
}

// Store reads and appends id mappings. Safe for a single writer; the
// synchronizer serializes all catalogue writes.
type Store struct {
	path string
}

// New creates a Store backed by the given file. The file is created with a
// header line when it does not exist yet.
func New(path string) (*Store, error) {
	s := &Store{path: path}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := os.WriteFile(path, []byte(header+"\n"), 0o644); err != nil {
			return nil, fmt.Errorf("creating id store %q: %w", path, err)
		}
	} else if err != nil {
		return nil, fmt.Errorf("checking id store %q: %w", path, err)
	}
	return s, nil
}

// Lookup returns the portal id recorded for a Blue-Cloud id. The file is
// scanned front to back; the first match wins.
func (s *Store) Lookup(blueID string) (string, bool, error) {
	entries, err := s.Entries()
	if err != nil {
		return "", false, err
	}
	for _, e := range entries {
		if e.BlueCloudID == blueID {
			return e.EOSCID, true, nil
		}
	}
	return "", false, nil
}

// Append records one id mapping with the current timestamp. When an entry
// with the same service name, Blue-Cloud id, portal id and title already
// exists, nothing is written; re-running a synchronization must not grow
// the file.
func (s *Store) Append(serviceName, blueID, eoscID, eoscTitle string) error {
	entries, err := s.Entries()
	if err != nil {
		return err
	}
	for _, e := range entries {
		if e.ServiceName == serviceName && e.BlueCloudID == blueID &&
			e.EOSCID == eoscID && e.EOSCTitle == eoscTitle {
			return nil
		}
	}

	line := strings.Join([]string{
		time.Now().Format(timeFormat), serviceName, blueID, eoscID, eoscTitle,
	}, ";")

	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening id store %q: %w", s.path, err)
	}
	defer f.Close()

	if _, err := f.WriteString(line + "\n"); err != nil {
		return fmt.Errorf("appending to id store %q: %w", s.path, err)
	}
	return nil
}

// Entries returns all stored mappings in file order. Blank lines and the
// header are skipped; a malformed line is an error, not a silent skip.
func (s *Store) Entries() ([]Entry, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("opening id store %q: %w", s.path, err)
	}
	defer f.Close()

	var entries []Entry
	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if len(line) == 0 || line == header {
			continue
		}
		fields := strings.Split(line, ";")
		if len(fields) != 5 {
			return nil, fmt.Errorf("id store %q line %d: expected 5 fields, got %d", s.path, lineNo, len(fields))
		}
		entries = append(entries, Entry{
			Date:        fields[0],
			ServiceName: fields[1],
			BlueCloudID: fields[2],
			EOSCID:      fields[3],
			EOSCTitle:   fields[4],
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading id store %q: %w", s.path, err)
	}
	return entries, nil
}
