package model_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Makepad-fr/listify/internal/model"
)

func TestTimestampAcceptsNaiveAndZonedForms(t *testing.T) {
	var l model.List
	err := json.Unmarshal([]byte(`{"id":1,"title":"Groceries","user_id":2,"share_token":null,"is_shared":false,
		"created_at":"2025-03-01T10:20:30.123456","updated_at":"2025-03-01T10:20:30Z"}`), &l)
	require.NoError(t, err)

	require.NotNil(t, l.CreatedAt)
	assert.Equal(t, time.Date(2025, 3, 1, 10, 20, 30, 123456000, time.UTC), l.CreatedAt.Time)
	require.NotNil(t, l.UpdatedAt)
	assert.Equal(t, 30, l.UpdatedAt.Second())
	assert.False(t, l.Shared())
	assert.Equal(t, "", l.Token())
}

func TestTimestampRejectsGarbage(t *testing.T) {
	var ts model.Timestamp
	assert.Error(t, json.Unmarshal([]byte(`"yesterday"`), &ts))
	assert.Error(t, json.Unmarshal([]byte(`12`), &ts))
	assert.NoError(t, json.Unmarshal([]byte(`null`), &ts))
}

func TestWithShareIsBinary(t *testing.T) {
	l := model.List{ID: 3, Title: "Hardware"}

	shared := l.WithShare("tok")
	assert.True(t, shared.Shared())
	assert.Equal(t, "tok", shared.Token())

	private := shared.WithShare("")
	assert.False(t, private.Shared())
	assert.Nil(t, private.ShareToken)
}

func TestProgress(t *testing.T) {
	items := []model.Item{{Name: "Milk", Checked: true}, {Name: "Eggs"}, {Name: "Bread", Checked: true}}
	done, pending := model.Progress(items)
	assert.Equal(t, 2, done)
	assert.Equal(t, 1, pending)
	assert.Equal(t, 2, model.CompletedCount(items))
	assert.Equal(t, 0, model.CompletedCount(nil))
}
