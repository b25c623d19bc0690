package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-file-manager/pkg/fault"
)

func TestSearchFindsNestedMatches(t *testing.T) {
	fs, _ := newStack(t)
	svc := NewSearchService(fs, testLogger(), 10, 200, time.Second)

	writeTestFile(t, fs, "/Report-2026.pdf", "x")
	writeTestFile(t, fs, "/docs/annual-report.txt", "x")
	writeTestFile(t, fs, "/docs/deep/REPORTS.md", "x")
	writeTestFile(t, fs, "/unrelated.txt", "x")

	result, err := svc.Search(context.Background(), "/", "report")
	require.NoError(t, err)
	assert.Equal(t, "report", result.Query)
	assert.Len(t, result.Items, 3, "matching is case-insensitive substring")
}

func TestSearchScopedToDirectory(t *testing.T) {
	fs, _ := newStack(t)
	svc := NewSearchService(fs, testLogger(), 10, 200, time.Second)

	writeTestFile(t, fs, "/a/match.txt", "x")
	writeTestFile(t, fs, "/b/match.txt", "x")

	result, err := svc.Search(context.Background(), "/a", "match")
	require.NoError(t, err)
	require.Len(t, result.Items, 1)
	assert.Equal(t, "/a/match.txt", result.Items[0].Path)
}

func TestSearchRespectsMaxResults(t *testing.T) {
	fs, _ := newStack(t)
	svc := NewSearchService(fs, testLogger(), 10, 2, time.Second)

	writeTestFile(t, fs, "/hit1.txt", "x")
	writeTestFile(t, fs, "/hit2.txt", "x")
	writeTestFile(t, fs, "/hit3.txt", "x")

	result, err := svc.Search(context.Background(), "/", "hit")
	require.NoError(t, err)
	assert.Len(t, result.Items, 2)
}

func TestSearchRespectsMaxDepth(t *testing.T) {
	fs, _ := newStack(t)
	svc := NewSearchService(fs, testLogger(), 1, 200, time.Second)

	writeTestFile(t, fs, "/target-top.txt", "x")
	writeTestFile(t, fs, "/l1/target-mid.txt", "x")
	writeTestFile(t, fs, "/l1/l2/target-deep.txt", "x")

	result, err := svc.Search(context.Background(), "/", "target")
	require.NoError(t, err)
	assert.Len(t, result.Items, 2, "entries below the depth limit stay invisible")
}

func TestSearchEmptyQuery(t *testing.T) {
	fs, _ := newStack(t)
	svc := NewSearchService(fs, testLogger(), 10, 200, time.Second)

	_, err := svc.Search(context.Background(), "/", "   ")
	require.Error(t, err)
	assert.Equal(t, fault.KindBadRequest, fault.KindOf(err))
}

func TestSearchMissingRoot(t *testing.T) {
	fs, _ := newStack(t)
	svc := NewSearchService(fs, testLogger(), 10, 200, time.Second)

	_, err := svc.Search(context.Background(), "/nope", "x")
	require.Error(t, err)
	assert.Equal(t, fault.KindNotFound, fault.KindOf(err))
}
