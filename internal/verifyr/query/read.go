package query

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/vaibhaw-/VerifyR/internal/verifyr/journal"
)

// ReadEntries streams journal lines from files, or stdin when none are
// given. Malformed lines arrive as errors and do not stop the stream.
func ReadEntries(files []string) <-chan EntryResult {
	ch := make(chan EntryResult, 100)

	go func() {
		defer close(ch)
		if len(files) == 0 {
			readFromReader(os.Stdin, "stdin", ch)
			return
		}
		for _, file := range files {
			f, err := os.Open(file)
			if err != nil {
				ch <- EntryResult{Err: fmt.Errorf("open %s: %w", file, err)}
				continue
			}
			readFromReader(f, file, ch)
			f.Close()
		}
	}()

	return ch
}

func readFromReader(r io.Reader, source string, ch chan<- EntryResult) {
	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		b := scanner.Bytes()
		if len(b) == 0 {
			continue
		}
		var e journal.Entry
		if err := json.Unmarshal(b, &e); err != nil {
			ch <- EntryResult{Err: fmt.Errorf("%s line %d: %w", source, line, err)}
			continue
		}
		ch <- EntryResult{Entry: e}
	}
	if err := scanner.Err(); err != nil {
		ch <- EntryResult{Err: fmt.Errorf("scan %s: %w", source, err)}
	}
}

// WriteEntryNDJSON writes e as a single JSON line.
func WriteEntryNDJSON(w io.Writer, e journal.Entry) error {
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal entry: %w", err)
	}
	if _, err := fmt.Fprintln(w, string(data)); err != nil {
		return fmt.Errorf("write entry: %w", err)
	}
	return nil
}
