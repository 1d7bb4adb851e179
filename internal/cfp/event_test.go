package cfp

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStr(t *testing.T) {
	assert.Nil(t, Str(""))
	require.NotNil(t, Str("x"))
	assert.Equal(t, "x", *Str("x"))
	assert.Equal(t, "", Value(nil))
	assert.Equal(t, "x", Value(Str("x")))
}

func TestID(t *testing.T) {
	a := &Event{Title: "KubeCon", Link: "https://sessionize.com/kubecon"}
	b := &Event{Title: "KubeCon renamed", Link: "https://sessionize.com/kubecon"}
	c := &Event{Title: "KubeCon"}
	d := &Event{Title: "KubeCon", Link: "title|KubeCon"}

	assert.Len(t, ID(a), 40)
	assert.Equal(t, ID(a), ID(b), "ID should depend on link only")
	assert.NotEqual(t, ID(a), ID(c))
	assert.Equal(t, ID(c), ID(&Event{Title: "KubeCon"}))
	assert.NotEqual(t, ID(c), ID(d), "title fallback should not collide with a link")
	assert.NotEqual(t, ID(&Event{Link: "link|x"}), ID(&Event{Title: "x", Link: "x"}))
	assert.Equal(t, ID(&Event{Title: "a"}), ID(&Event{Title: "a", Link: ""}))
}

func TestEvent_JSONOmitsAbsentFields(t *testing.T) {
	evt := &Event{Title: "OSS Summit", Link: "https://sessionize.com/oss", Date: Str("12 Dec 2024")}

	data, err := json.Marshal(evt)
	require.NoError(t, err)
	assert.JSONEq(t, `{"title":"OSS Summit","link":"https://sessionize.com/oss","date":"12 Dec 2024"}`, string(data))
}

func TestDetail_MissingFields(t *testing.T) {
	d := &Detail{Title: Str("OSS Summit"), CFPCloses: Str("1 Jan 2025")}

	missing := d.MissingFields()
	assert.Len(t, missing, 7)
	assert.NotContains(t, missing, "title")
	assert.NotContains(t, missing, "cfp_closes")
	assert.Contains(t, missing, "cfp_timezone")

	assert.Len(t, (&Detail{}).MissingFields(), 9)
}
