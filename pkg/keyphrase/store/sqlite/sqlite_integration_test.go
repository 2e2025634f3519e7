package sqlite

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/cognicore/keyphrase/pkg/keyphrase/internalerr"
	"github.com/cognicore/keyphrase/pkg/keyphrase/rank"
	"github.com/cognicore/keyphrase/pkg/keyphrase/report"
	"github.com/cognicore/keyphrase/pkg/keyphrase/store"
)

func openTemp(t *testing.T) (store.Store, string) {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "reports.db")
	st, err := OpenSQLite(context.Background(), dbPath)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	return st, dbPath
}

func sampleReport(id, source string, kws ...rank.Keyword) report.Report {
	return report.Report{
		ID:        id,
		Source:    source,
		CreatedAt: time.Date(2024, 5, 1, 10, 30, 0, 123456789, time.UTC),
		Weights:   rank.Weights{Threshold: 0.002, Exponent: 1.5},
		Keywords:  kws,
		Stats:     report.Stats{Sentences: 3, Tokens: 20, Fallbacks: 1, Chunks: 5, Lemmas: 12},
	}
}

// TestSQLiteIntegrationBasic tests save and retrieve
func TestSQLiteIntegrationBasic(t *testing.T) {
	ctx := context.Background()
	st, _ := openTemp(t)
	defer st.Close()

	r := sampleReport("01HX0000000000000000000001", "news/1",
		rank.Keyword{Text: "новая труба", Lemma: "новый труба", Words: 2, Frequency: 3, Weight: 0.3},
		rank.Keyword{Text: "труба", Lemma: "труба", Words: 1, Frequency: 2, Weight: 0.1},
	)
	if err := st.SaveReport(ctx, r); err != nil {
		t.Fatalf("SaveReport: %v", err)
	}

	got, err := st.GetReport(ctx, r.ID)
	if err != nil {
		t.Fatalf("GetReport: %v", err)
	}
	if !got.CreatedAt.Equal(r.CreatedAt) {
		t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, r.CreatedAt)
	}
	got.CreatedAt = r.CreatedAt
	if !reflect.DeepEqual(got, r) {
		t.Errorf("round trip mismatch:\n got  %+v\n want %+v", got, r)
	}
}

func TestSQLiteGetMissing(t *testing.T) {
	st, _ := openTemp(t)
	defer st.Close()

	if _, err := st.GetReport(context.Background(), "missing"); !errors.Is(err, internalerr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestSQLiteUpsertReplacesKeywords(t *testing.T) {
	ctx := context.Background()
	st, _ := openTemp(t)
	defer st.Close()

	r := sampleReport("01A", "doc", rank.Keyword{Text: "a", Lemma: "a", Words: 1, Weight: 0.5}, rank.Keyword{Text: "b", Lemma: "b", Words: 1, Weight: 0.4})
	if err := st.SaveReport(ctx, r); err != nil {
		t.Fatal(err)
	}
	r.Keywords = []rank.Keyword{{Text: "c", Lemma: "c", Words: 1, Weight: 0.9}}
	if err := st.SaveReport(ctx, r); err != nil {
		t.Fatal(err)
	}

	got, err := st.GetReport(ctx, "01A")
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Keywords) != 1 || got.Keywords[0].Text != "c" {
		t.Errorf("Keywords = %+v", got.Keywords)
	}
}

func TestSQLiteEmptyKeywords(t *testing.T) {
	ctx := context.Background()
	st, _ := openTemp(t)
	defer st.Close()

	if err := st.SaveReport(ctx, sampleReport("01E", "empty")); err != nil {
		t.Fatal(err)
	}
	got, err := st.GetReport(ctx, "01E")
	if err != nil {
		t.Fatal(err)
	}
	if got.Keywords == nil || len(got.Keywords) != 0 {
		t.Errorf("Keywords = %#v, want empty slice", got.Keywords)
	}
}

func TestSQLiteListAndTop(t *testing.T) {
	ctx := context.Background()
	st, _ := openTemp(t)
	defer st.Close()

	reports := []report.Report{
		sampleReport("01A", "a", rank.Keyword{Text: "труба", Lemma: "труба", Words: 1, Weight: 0.25}),
		sampleReport("01B", "b", rank.Keyword{Text: "труба", Lemma: "труба", Words: 1, Weight: 0.25}, rank.Keyword{Text: "завод", Lemma: "завод", Words: 1, Weight: 0.375}),
		sampleReport("01C", "a", rank.Keyword{Text: "сталь", Lemma: "сталь", Words: 1, Weight: 0.125}),
	}
	for _, r := range reports {
		if err := st.SaveReport(ctx, r); err != nil {
			t.Fatal(err)
		}
	}

	all, err := st.ListReports(ctx, "", 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 3 || all[0].ID != "01C" || all[2].ID != "01A" {
		t.Errorf("ListReports order wrong: %d reports", len(all))
	}
	if len(all[1].Keywords) != 2 {
		t.Errorf("listed report missing keywords: %+v", all[1])
	}

	onlyA, err := st.ListReports(ctx, "a", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(onlyA) != 2 || onlyA[0].ID != "01C" || onlyA[1].ID != "01A" {
		t.Errorf("ListReports(a) = %d reports", len(onlyA))
	}

	top, err := st.TopPhrases(ctx, 2)
	if err != nil {
		t.Fatal(err)
	}
	want := []store.Phrase{
		{Text: "труба", Lemma: "труба", Weight: 0.5, Documents: 2},
		{Text: "завод", Lemma: "завод", Weight: 0.375, Documents: 1},
	}
	if !reflect.DeepEqual(top, want) {
		t.Errorf("TopPhrases = %+v, want %+v", top, want)
	}
}

func TestSQLitePersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	st, path := openTemp(t)
	if err := st.SaveReport(ctx, sampleReport("01P", "doc", rank.Keyword{Text: "x", Lemma: "x", Words: 1, Weight: 1})); err != nil {
		t.Fatal(err)
	}
	st.Close()

	reopened, err := OpenSQLite(ctx, path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()

	got, err := reopened.GetReport(ctx, "01P")
	if err != nil {
		t.Fatalf("GetReport after reopen: %v", err)
	}
	if len(got.Keywords) != 1 {
		t.Errorf("Keywords = %+v", got.Keywords)
	}
}

func TestSQLiteConcurrentSaves(t *testing.T) {
	ctx := context.Background()
	st, _ := openTemp(t)
	defer st.Close()

	var wg sync.WaitGroup
	errs := make(chan error, 20)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := fmt.Sprintf("01C%02d", i)
			errs <- st.SaveReport(ctx, sampleReport(id, "doc", rank.Keyword{Text: "k", Lemma: "k", Words: 1, Weight: 0.1}))
		}(i)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			t.Errorf("SaveReport: %v", err)
		}
	}

	list, err := st.ListReports(ctx, "doc", 100)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 20 {
		t.Errorf("got %d reports, want 20", len(list))
	}
}
