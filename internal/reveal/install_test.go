package reveal

import (
	"os"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func loadPage(t *testing.T) *Page {
	t.Helper()
	f, err := os.Open("testdata/page.html")
	require.NoError(t, err)
	defer f.Close()

	page, err := ParsePage(f)
	require.NoError(t, err)
	return page
}

func TestParsePage(t *testing.T) {
	t.Parallel()

	page := loadPage(t)
	hero, ok := page.Node("hero")
	require.True(t, ok)
	roles, ok := hero.Find("roles")
	require.True(t, ok)
	assert.Equal(t, "Backend Engineer", roles.Text())

	skills, ok := page.ByID("skills")
	require.True(t, ok)
	rings := skills.FindAll("ring")
	require.Len(t, rings, 3)
	pct, ok := rings[1].Attr("data-pct")
	require.True(t, ok)
	assert.Equal(t, "65", pct)
}

func TestInstallSkipsMissingSections(t *testing.T) {
	t.Parallel()

	vp := NewViewport()
	q, err := Install(NewPage(), vp, NewVirtualClock(0), DefaultConfig(), zaptest.NewLogger(t))
	require.NoError(t, err)
	assert.Empty(t, q.Sections())
	assert.True(t, q.Settled())

	// Scrolling past nothing must not panic.
	vp.Scroll("hero", 1)
}

func TestInstallEducationNeedsBothElements(t *testing.T) {
	t.Parallel()

	page := NewPage()
	edu := page.Add(nil, "section", "education")
	page.Add(edu, "img", "", "side-photo")

	q, err := Install(page, NewViewport(), NewVirtualClock(0), DefaultConfig(), nil)
	require.NoError(t, err)
	_, ok := q.Section("education")
	assert.False(t, ok)
	photo := page.Root().FindAll("side-photo")[0]
	assert.False(t, photo.HasClass(ClassHidden), "skipped section is left untouched")
}

func TestSimulateWholePage(t *testing.T) {
	t.Parallel()

	page := loadPage(t)
	cfg := DefaultConfig()
	res, err := Simulate(page, cfg, PageOrder(cfg, time.Second), time.Minute, zaptest.NewLogger(t))
	require.NoError(t, err)

	q := res.Sequencer
	require.Len(t, q.Sections(), 4)
	assert.True(t, q.Settled())

	// Education card waits for the configured delay after the section fires at 3s.
	assert.Equal(t, 3*time.Second, revealTime(t, page, ".side-photo[0]"))
	assert.Equal(t, 3*time.Second+800*time.Millisecond, revealTime(t, page, ".card-dark[0]"))

	// Certificates alternate their entry side.
	certs := page.Root().FindAll("cert-item")
	assert.True(t, certs[0].HasClass(ClassFromRight))
	assert.True(t, certs[1].HasClass(ClassFromLeft))
	assert.True(t, certs[2].HasClass(ClassFromRight))

	roles, _ := page.Root().Find("roles")
	assert.Equal(t, "Backend Engineer", roles.Text())
}

func TestSimulateCompactEducationDelay(t *testing.T) {
	t.Parallel()

	page := loadPage(t)
	cfg := DefaultConfig()
	cfg.Education.CardDelay = CompactEducationCardDelay
	_, err := Simulate(page, cfg, []Scroll{{Section: "education", Ratio: 0.5}}, time.Minute, nil)
	require.NoError(t, err)

	assert.Equal(t, 200*time.Millisecond, revealTime(t, page, ".card-dark[0]"))
}

func TestRescrollingDoesNotReplay(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	once := loadPage(t)
	_, err := Simulate(once, cfg, PageOrder(cfg, time.Second), time.Minute, nil)
	require.NoError(t, err)

	twice := loadPage(t)
	scrolls := append(PageOrder(cfg, time.Second), PageOrder(cfg, time.Second)...)
	for i := 4; i < len(scrolls); i++ {
		scrolls[i].At += 10 * time.Second
	}
	_, err = Simulate(twice, cfg, scrolls, time.Minute, nil)
	require.NoError(t, err)

	if diff := cmp.Diff(once.Journal(), twice.Journal()); diff != "" {
		t.Errorf("second pass changed the journal (-once +twice):\n%s", diff)
	}
}
