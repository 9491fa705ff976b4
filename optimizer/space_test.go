package optimizer

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/JuanMi-CG/quant-trading/core"
)

func TestNewParameterSpace_RejectsMalformedSpecs(t *testing.T) {
	cases := []struct {
		name  string
		specs []core.ParameterSpec
	}{
		{"empty name", []core.ParameterSpec{core.Integer("", 1, 5, 1)}},
		{"duplicate name", []core.ParameterSpec{core.Integer("w", 1, 5, 1), core.Real("w", 0, 1, 2)}},
		{"no choices", []core.ParameterSpec{core.Categorical("mode")}},
		{"inverted integer bounds", []core.ParameterSpec{core.Integer("w", 10, 1, 1)}},
		{"inverted real bounds", []core.ParameterSpec{core.Real("x", 1, 0, 3)}},
		{"zero step", []core.ParameterSpec{core.Integer("w", 1, 5, 0)}},
		{"zero count", []core.ParameterSpec{core.Real("x", 0, 1, 0)}},
		{"unknown kind", []core.ParameterSpec{{Name: "w"}}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewParameterSpace(tc.specs)
			require.ErrorIs(t, err, core.ErrInvalidParameterSpec)
		})
	}
}

func TestParameterSpace_Grid(t *testing.T) {
	space, err := NewParameterSpace([]core.ParameterSpec{
		core.Integer("window", 2, 10, 3),
		core.Real("width", 0, 1, 5),
		core.Real("single", 3, 7, 1),
		core.Categorical("mode", "a", "b"),
	})
	require.NoError(t, err)

	grid := space.Grid()
	require.Equal(t, []any{2, 5, 8}, grid[0])
	require.Equal(t, []any{0.0, 0.25, 0.5, 0.75, 1.0}, grid[1])
	require.Equal(t, []any{3.0}, grid[2])
	require.Equal(t, []any{"a", "b"}, grid[3])
}

func TestParameterSpace_CandidatesLastKeyFastest(t *testing.T) {
	space, err := NewParameterSpace([]core.ParameterSpec{
		core.Integer("a", 1, 2, 1),
		core.Categorical("b", "x", "y"),
	})
	require.NoError(t, err)

	candidates := space.Candidates()
	require.Equal(t, []core.Candidate{
		{"a": 1, "b": "x"},
		{"a": 1, "b": "y"},
		{"a": 2, "b": "x"},
		{"a": 2, "b": "y"},
	}, candidates)
}

func TestParameterSpace_EmptySpaceHasOneCandidate(t *testing.T) {
	space, err := NewParameterSpace(nil)
	require.NoError(t, err)
	require.Equal(t, []core.Candidate{{}}, space.Candidates())
}

func TestParameterSpace_Bounds(t *testing.T) {
	space, err := NewParameterSpace([]core.ParameterSpec{
		core.Integer("w", 5, 30, 5),
		core.Real("x", -1, 1, 3),
		core.Categorical("mode", "a", "b", "c"),
	})
	require.NoError(t, err)

	require.Equal(t, [][2]float64{{5, 30}, {-1, 1}, {0, 2}}, space.Bounds())
}

func TestParameterSpace_EncodeDecodeRoundTrip(t *testing.T) {
	space, err := NewParameterSpace([]core.ParameterSpec{
		core.Integer("window", 2, 10, 3),
		core.Real("width", 0.5, 2.5, 5),
		core.Categorical("mode", "long_only", "long_short"),
	})
	require.NoError(t, err)

	for _, candidate := range space.Candidates() {
		vector, err := space.Encode(candidate)
		require.NoError(t, err)

		decoded, err := space.Decode(vector)
		require.NoError(t, err)
		require.Equal(t, candidate, decoded)
	}
}

func TestParameterSpace_DecodeRoundsAndClips(t *testing.T) {
	space, err := NewParameterSpace([]core.ParameterSpec{
		core.Integer("window", 2, 10, 3),
		core.Categorical("mode", "a", "b", "c"),
		core.Real("width", 0, 1, 2),
	})
	require.NoError(t, err)

	decoded, err := space.Decode([]float64{-5.4, 7.2, 0.33})
	require.NoError(t, err)
	require.Equal(t, 2, decoded["window"])   // clipped to the lower bound
	require.Equal(t, "c", decoded["mode"])   // clipped to the last choice
	require.Equal(t, 0.33, decoded["width"]) // reals pass through

	decoded, err = space.Decode([]float64{6.4, 1.2, 0.9})
	require.NoError(t, err)
	require.Equal(t, 6, decoded["window"])
	require.Equal(t, "b", decoded["mode"])
}

func TestParameterSpace_DecodeDimensionMismatch(t *testing.T) {
	space, err := NewParameterSpace([]core.ParameterSpec{core.Integer("w", 1, 5, 1)})
	require.NoError(t, err)

	_, err = space.Decode([]float64{1, 2})
	require.Error(t, err)
}

func TestParameterSpace_EncodeRejectsUnknownChoice(t *testing.T) {
	space, err := NewParameterSpace([]core.ParameterSpec{core.Categorical("mode", "a", "b")})
	require.NoError(t, err)

	_, err = space.Encode(core.Candidate{"mode": "z"})
	require.Error(t, err)

	_, err = space.Encode(core.Candidate{})
	require.Error(t, err)
}

func TestParameterSpace_Conform(t *testing.T) {
	space, err := NewParameterSpace([]core.ParameterSpec{
		core.Integer("window", 2, 10, 3),
		core.Real("width", 0, 1, 2),
		core.Categorical("mode", "a", "b"),
	})
	require.NoError(t, err)

	// JSON decoding turns every number into float64
	conformed, err := space.Conform(core.Candidate{
		"window": 8.0,
		"width":  1,
		"mode":   "b",
	})
	require.NoError(t, err)
	require.Equal(t, core.Candidate{"window": 8, "width": 1.0, "mode": "b"}, conformed)

	_, err = space.Conform(core.Candidate{"window": 8, "width": 0.5, "mode": "z"})
	require.Error(t, err)

	_, err = space.Conform(core.Candidate{"window": 8})
	require.Error(t, err)
}
