package inmemdb

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alihaimran285-byte/final-project-sub001/core/school"
)

func TestOpen_Seed(t *testing.T) {
	created := time.Date(2021, 2, 3, 4, 5, 6, 0, time.UTC)
	db := Open(map[school.Kind][]school.Record{
		school.KindStudent: {
			{"name": "A"},
			{school.FieldID: 7, school.FieldCreatedAt: created, "name": "B"},
		},
	})

	students := db.List(school.KindStudent)
	require.Len(t, students, 2)
	assert.NotEmpty(t, students[0].ID())
	assert.False(t, students[0].CreatedAt().IsZero())
	assert.Equal(t, "7", students[1][school.FieldID])
	assert.Equal(t, created, students[1][school.FieldCreatedAt])
	assert.Equal(t, created, students[1][school.FieldUpdatedAt])
	assert.Empty(t, db.List(school.KindTeacher))
}

func TestDB_Append(t *testing.T) {
	now := time.Date(2021, 1, 1, 10, 0, 0, 0, time.UTC)
	nowFunc = func() time.Time { return now }
	defer func() { nowFunc = time.Now }()

	db := Open(nil)
	data := school.Record{"name": "A", school.FieldID: "forged", school.FieldCreatedAt: "yesterday"}
	rec := db.Append(school.KindStudent, data)

	assert.NotEqual(t, "forged", rec.ID())
	assert.NotEmpty(t, rec.ID())
	assert.Equal(t, "A", rec["name"])
	assert.Equal(t, now, rec[school.FieldCreatedAt])
	assert.Equal(t, now, rec[school.FieldUpdatedAt])
	assert.Equal(t, 1, db.Len(school.KindStudent))
	assert.Equal(t, "forged", data[school.FieldID], "input must not be modified")

	// returned record is detached from the collection
	rec["name"] = "changed"
	found, err := db.Find(school.KindStudent, rec.ID())
	require.NoError(t, err)
	assert.Equal(t, "A", found["name"])
}

func TestDB_List_Detached(t *testing.T) {
	db := Open(map[school.Kind][]school.Record{school.KindTeacher: {{"name": "T"}}})
	list := db.List(school.KindTeacher)
	list[0]["name"] = "changed"
	_ = append(list, school.Record{"name": "extra"})

	again := db.List(school.KindTeacher)
	require.Len(t, again, 1)
	assert.Equal(t, "T", again[0]["name"])
}

func TestDB_Find(t *testing.T) {
	db := Open(map[school.Kind][]school.Record{school.KindTeacher: {{school.FieldID: "t1", "name": "T"}}})

	rec, err := db.Find(school.KindTeacher, "t1")
	require.NoError(t, err)
	assert.Equal(t, "T", rec["name"])

	_, err = db.Find(school.KindTeacher, "t2")
	assert.Equal(t, school.ErrNotFound, err)
	_, err = db.Find(school.KindStudent, "t1")
	assert.Equal(t, school.ErrNotFound, err)
}

func TestDB_ConcurrentAppend(t *testing.T) {
	db := Open(nil)
	const n = 100

	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func(i int) {
			defer wg.Done()
			db.Append(school.KindAttendance, school.Record{"n": i})
			_ = db.List(school.KindAttendance)
		}(i)
	}
	wg.Wait()

	list := db.List(school.KindAttendance)
	require.Len(t, list, n)
	ids := make(map[string]bool, n)
	for _, rec := range list {
		ids[rec.ID()] = true
	}
	assert.Len(t, ids, n, "ids must be unique")
}

func TestDB_UnknownKind(t *testing.T) {
	db := Open(nil)
	kind := school.Kind("club")
	assert.Empty(t, db.List(kind))
	rec := db.Append(kind, school.Record{"name": "chess"})
	assert.Equal(t, 1, db.Len(kind))
	assert.Equal(t, "chess", rec["name"])
	assert.Equal(t, fmt.Sprint(rec[school.FieldID]), rec.ID())
}
