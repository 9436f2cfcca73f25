package timex

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDuration_UnmarshalJSON(t *testing.T) {
	var d Duration

	assert.NoError(t, json.Unmarshal([]byte(`"8h"`), &d))
	assert.Equal(t, 8*time.Hour, d.Duration)

	assert.NoError(t, json.Unmarshal([]byte(`1000000000`), &d))
	assert.Equal(t, time.Second, d.Duration)

	assert.Error(t, json.Unmarshal([]byte(`"not-a-duration"`), &d))
	assert.Error(t, json.Unmarshal([]byte(`true`), &d))
}

func TestDuration_MarshalJSON(t *testing.T) {
	d := Duration{Duration: 90 * time.Minute}
	raw, err := json.Marshal(d)
	assert.NoError(t, err)
	assert.Equal(t, `"1h30m0s"`, string(raw))
}
