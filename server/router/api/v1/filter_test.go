package v1

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apierrors "github.com/flashwise/flashwise/server/internal/errors"
)

func TestParseCardFilter(t *testing.T) {
	t.Run("deck equality", func(t *testing.T) {
		filter, err := parseCardFilter(`deck == "9dK3bq"`)
		require.NoError(t, err)
		require.NotNil(t, filter.DeckUID)
		assert.Equal(t, "9dK3bq", *filter.DeckUID)
		assert.Empty(t, filter.Tags)
	})

	t.Run("reversed operands", func(t *testing.T) {
		filter, err := parseCardFilter(`"9dK3bq" == deck`)
		require.NoError(t, err)
		require.NotNil(t, filter.DeckUID)
		assert.Equal(t, "9dK3bq", *filter.DeckUID)
	})

	t.Run("conjunction", func(t *testing.T) {
		filter, err := parseCardFilter(`deck == "x" && tag == "verbs" && new == true`)
		require.NoError(t, err)
		require.NotNil(t, filter.DeckUID)
		assert.Equal(t, []string{"verbs"}, filter.Tags)
		require.NotNil(t, filter.OnlyNew)
		assert.True(t, *filter.OnlyNew)
	})

	t.Run("tag membership collects all tags", func(t *testing.T) {
		filter, err := parseCardFilter(`tag in ["verbs", "spanish"]`)
		require.NoError(t, err)
		assert.Equal(t, []string{"verbs", "spanish"}, filter.Tags)
	})

	t.Run("due flag", func(t *testing.T) {
		filter, err := parseCardFilter(`due == true`)
		require.NoError(t, err)
		require.NotNil(t, filter.Due)
		assert.True(t, *filter.Due)
	})

	t.Run("rejections", func(t *testing.T) {
		// Unsupported operators, disjunction, negation, undeclared fields,
		// wrong literal types, membership on a non-tag field, non-string
		// tag lists, literal-free comparisons, and bare idents.
		for _, expression := range []string{
			`deck != "x"`,
			`deck == "a" || due`,
			`unknown == "x"`,
			`deck == true`,
			`new == "yes"`,
			`deck in ["a"]`,
			`deck == "a" && !due`,
			`tag in [1, 2]`,
			`deck == due`,
			`due`,
		} {
			_, err := parseCardFilter(expression)
			require.Error(t, err, "expression %q should be rejected", expression)
			assert.True(t, apierrors.IsCode(err, apierrors.ErrCodeInvalidArgument), "expression %q", expression)
		}
	})
}
