package graduate

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseForm(t *testing.T) {
	t.Run("check-in screen coerces checkbox and seat fields", func(t *testing.T) {
		form := url.Values{
			"attended":    {"on"},
			"seat_row":    {"B"},
			"seat_number": {"14"},
		}
		changes, err := ParseForm(ScreenCheckIn, form)
		require.NoError(t, err)
		assert.Equal(t, true, changes["attended"])
		assert.Equal(t, "B", changes["seat_row"])
		assert.Equal(t, "14", changes["seat_number"])
	})

	t.Run("absent checkbox means unchecked", func(t *testing.T) {
		changes, err := ParseForm(ScreenGown, url.Values{"gown_size": {"L"}})
		require.NoError(t, err)
		assert.Equal(t, false, changes["gown_collected"])
		assert.Equal(t, false, changes["gown_returned"])
	})

	t.Run("presentation order must be positive or empty", func(t *testing.T) {
		for _, bad := range []string{"0", "-3", "abc", "1.5"} {
			_, err := ParseForm(ScreenCheckIn, url.Values{"presentation_order": {bad}})
			var verr *ValidationError
			require.ErrorAs(t, err, &verr, "value %q", bad)
			assert.Contains(t, verr.Fields, "presentation_order")
		}

		changes, err := ParseForm(ScreenCheckIn, url.Values{"presentation_order": {"7"}})
		require.NoError(t, err)
		assert.Equal(t, 7, changes["presentation_order"])

		changes, err = ParseForm(ScreenCheckIn, url.Values{"presentation_order": {""}})
		require.NoError(t, err)
		assert.Equal(t, (*int)(nil), changes["presentation_order"])
	})

	t.Run("fields outside the screen allow-list are ignored", func(t *testing.T) {
		form := url.Values{
			"gown_collected": {"on"},
			"name":           {"Hacked Name"},
			"unique_id":      {"U999"},
			"attended":       {"on"},
		}
		changes, err := ParseForm(ScreenGown, form)
		require.NoError(t, err)
		assert.NotContains(t, changes, "name")
		assert.NotContains(t, changes, "unique_id")
		assert.NotContains(t, changes, "attended")
		assert.Equal(t, true, changes["gown_collected"])
	})

	t.Run("text fields absent from the form stay untouched", func(t *testing.T) {
		changes, err := ParseForm(ScreenAdmin, url.Values{"display_name": {"Jo Bloggs"}})
		require.NoError(t, err)
		assert.Equal(t, "Jo Bloggs", changes["display_name"])
		assert.NotContains(t, changes, "gown_notes")
		assert.NotContains(t, changes, "seat_row")
	})

	t.Run("checkbox values coerce case-insensitively", func(t *testing.T) {
		for _, truthy := range []string{"on", "On", "TRUE", "true", "1", "yes", "YES"} {
			assert.True(t, ParseCheckbox(truthy), "value %q", truthy)
		}
		for _, falsy := range []string{"", "off", "0", "no", "maybe"} {
			assert.False(t, ParseCheckbox(falsy), "value %q", falsy)
		}
	})

	t.Run("unknown screen", func(t *testing.T) {
		_, err := ParseForm(Screen("kiosk"), url.Values{})
		assert.Error(t, err)
	})
}
