package main

import (
	"strings"
	"testing"
)

func TestReadAnnotations(t *testing.T) {
	input := strings.Join([]string{
		`{"kind":"highlight","text":"a passage","start":"/body/DocFragment[2]/body/div/p[3]/text().5","page":12}`,
		``,
		`{"kind":"session","start_page":10,"end_page":14}`,
	}, "\n")

	batch, err := readAnnotations(strings.NewReader(input))
	if err != nil {
		t.Fatalf("readAnnotations failed: %v", err)
	}
	if len(batch) != 2 {
		t.Fatalf("got %d annotations, want 2 (blank line skipped)", len(batch))
	}
	if batch[0].Kind != "highlight" || batch[0].Text != "a passage" {
		t.Errorf("first annotation: got %+v", batch[0])
	}
	if batch[0].Page == nil || *batch[0].Page != 12 {
		t.Errorf("page: got %v", batch[0].Page)
	}
	if batch[1].StartPage == nil || *batch[1].StartPage != 10 {
		t.Errorf("start page: got %v", batch[1].StartPage)
	}
}

func TestReadAnnotationsBadLine(t *testing.T) {
	input := `{"kind":"highlight"}` + "\nnot json\n"
	if _, err := readAnnotations(strings.NewReader(input)); err == nil {
		t.Fatal("malformed line should fail the read")
	} else if !strings.Contains(err.Error(), "line 2") {
		t.Errorf("error should name the line: %v", err)
	}
}

func TestReadAnnotationsEmpty(t *testing.T) {
	batch, err := readAnnotations(strings.NewReader(""))
	if err != nil {
		t.Fatalf("empty input should succeed: %v", err)
	}
	if len(batch) != 0 {
		t.Errorf("got %d annotations, want 0", len(batch))
	}
}
