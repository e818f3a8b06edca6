package resource

import (
	"context"
	"fmt"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func seeded(names []string) (*fakeServer, *Collection[widget]) {
	items := make([]widget, len(names))
	for i, name := range names {
		items[i] = widget{ID: int64(i + 1), Name: name}
	}
	srv := newFakeServer(items...)
	c := New[widget]("widgets", "/widgets", srv)
	if _, err := c.Fetch(context.Background()); err != nil {
		panic(err)
	}
	return srv, c
}

func sameIDs(a, b []widget) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].ID != b[i].ID {
			return false
		}
	}
	return true
}

func TestProperty_AddAppendsExactlyOne(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("add appends the server record at the end",
		prop.ForAll(
			func(names []string, name string) bool {
				_, c := seeded(names)
				before := c.Snapshot().Items

				created, err := c.Add(context.Background(), widget{Name: name})
				if err != nil {
					return false
				}
				after := c.Snapshot().Items
				return len(after) == len(before)+1 &&
					sameIDs(after[:len(before)], before) &&
					after[len(after)-1] == created
			},
			gen.SliceOf(gen.AlphaString()),
			gen.AlphaString(),
		))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestProperty_UpdateReplacesOnlyTarget(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("update keeps every position and replaces the target",
		prop.ForAll(
			func(names []string, pick int, name string) bool {
				_, c := seeded(names)
				before := c.Snapshot().Items
				id := int64(pick%len(names) + 1)

				updated, err := c.Update(context.Background(), id, widget{Name: name})
				if err != nil {
					return false
				}
				after := c.Snapshot().Items
				if !sameIDs(after, before) {
					return false
				}
				for i := range after {
					want := before[i]
					if after[i].ID == id {
						want = updated
					}
					if after[i] != want {
						return false
					}
				}
				return true
			},
			gen.SliceOfN(8, gen.AlphaString()).SuchThat(func(v []string) bool { return len(v) > 0 }),
			gen.IntRange(0, 100),
			gen.AlphaString(),
		))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestProperty_RemoveDropsOnlyTarget(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("remove drops exactly the matching record",
		prop.ForAll(
			func(names []string, pick int) bool {
				srv, c := seeded(names)
				before := c.Snapshot().Items
				id := int64(pick%(len(names)+2) + 1) // sometimes absent

				_, err := c.Remove(context.Background(), id)
				after := c.Snapshot().Items

				want := make([]widget, 0, len(before))
				for _, w := range before {
					if w.ID != id {
						want = append(want, w)
					}
				}
				issued := false
				for _, call := range srv.callLog() {
					if call == fmt.Sprintf("DELETE /widgets/%d", id) {
						issued = true
					}
				}
				if !issued {
					return false
				}
				if err != nil {
					// absent on the server: reported, local state untouched
					return sameIDs(after, before)
				}
				return sameIDs(after, want)
			},
			gen.SliceOf(gen.AlphaString()),
			gen.IntRange(0, 100),
		))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestProperty_FetchIsFullReplacement(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("fetch mirrors the server regardless of local items",
		prop.ForAll(
			func(local, remote []string) bool {
				srv, c := seeded(local)
				server := make([]widget, len(remote))
				for i, name := range remote {
					server[i] = widget{ID: int64(1000 + i), Name: name}
				}
				srv.mu.Lock()
				srv.items = server
				srv.mu.Unlock()

				if _, err := c.Fetch(context.Background()); err != nil {
					return false
				}
				st := c.Snapshot()
				return sameIDs(st.Items, server) && !st.Loading && st.Err == nil
			},
			gen.SliceOf(gen.AlphaString()),
			gen.SliceOf(gen.AlphaString()),
		))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}
