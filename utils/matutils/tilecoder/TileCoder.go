// Package tilecoder implements tile coding of vectors
package tilecoder

import (
	"fmt"
	"math"

	"golang.org/x/exp/rand"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r1"
	"gonum.org/v1/gonum/stat/distmv"
	"gonum.org/v1/gonum/stat/samplemv"

	"github.com/samuelfneumann/mdplearn/utils/floatutils"
)

// Controls tiling offsets. For each dimension, tilings are offset by
// randomly sampling from a uniform distribution with support
// [- tiling width/OffsetDiv, tiling width/OffsetDiv]
const OffsetDiv float64 = 1.5

// TileCoder implements functionality for tile coding a vector. Tile
// coding takes a low-dimensional vector and changes it into a large,
// sparse vector consisting of only 0's and 1's. Each 1 represents the
// coordinates of the original vector in some space of tilings. For
// example:
//
//	[0.5, 0.1] -> [0, 0, 0, 1, 0, 0, 1, 0]
//
// The number of nonzero elements in the tile-coded representation
// equals the number of tilings used to encode the vector, plus one if
// a bias unit is used. Tile coding requires that the space to be tiled
// be bounded. Vectors outside the bounds are coded by the nearest
// tiles.
//
// Each dimension of the space is fully tiled, and hash-based tile
// coding is not used.
type TileCoder struct {
	numTilings  int
	bounds      []r1.Interval
	offsets     []*mat.Dense
	bins        [][]int
	binLengths  [][]float64
	seed        uint64
	includeBias bool
}

// New creates and returns a new TileCoder. The bounds argument gives
// the interval along each dimension between which tilings are placed.
//
// The bins argument determines both the number of tilings to use and
// the number of tiles per each tiling. The number of elements in the
// outer slice determines the number of tilings to use. The sub-slices
// determine how many tiles are placed along each dimension for the
// respective tiling. For example, if bins := [][]int{{2, 2}, {4, 3}},
// then the TileCoder uses two tilings. The first tiling is a 2x2
// tiling. The second tiling uses 4 tiles along the first dimension and
// 3 tiles along the second dimension. Each len(bins[i]) must equal
// len(bounds).
//
// The parameter includeBias determines whether or not a bias unit is
// kept as the first unit in the tile coded representation.
func New(bounds []r1.Interval, bins [][]int, seed uint64,
	includeBias bool) *TileCoder {
	// Error checking
	if len(bounds) == 0 {
		panic("new: cannot tile code a 0-dimensional space")
	}
	if len(bins) == 0 {
		panic("new: cannot have less than 1 tiling")
	}
	for i := range bins {
		if len(bins[i]) != len(bounds) {
			msg := fmt.Sprintf("new: there should be a single number of "+
				"bins for each dimension: \n\thave(%d) \n\twant (%d)",
				len(bins[i]), len(bounds))
			panic(msg)
		}
		for _, b := range bins[i] {
			if b < 1 {
				panic(fmt.Sprintf("new: cannot use %d tiles along a "+
					"dimension", b))
			}
		}
	}

	// Calculate the length of bins and the tiling offset bounds
	var offsetBounds []r1.Interval
	numTilings := len(bins)
	binLengths := make([][]float64, numTilings)

	for j := 0; j < numTilings; j++ {
		binLengths[j] = make([]float64, len(bounds))

		for i, dim := range bounds {
			// Calculate the length of bins
			binLength := (dim.Max - dim.Min) / float64(bins[j][i])
			bound := binLength / OffsetDiv // Bounds tiling offsets

			binLengths[j][i] = binLength
			offsetBounds = append(offsetBounds,
				r1.Interval{Min: -bound, Max: bound})
		}
	}

	// Create RNG for uniform sampling of tiling offsets
	source := rand.NewSource(seed)
	u := distmv.NewUniform(offsetBounds, source)
	sampler := samplemv.IID{Dist: u}

	// Calculate offsets; each sample holds the offsets of all tilings,
	// and tiling j uses the columns [j*dims, (j+1)*dims)
	var offsets []*mat.Dense
	for j := 0; j < numTilings; j++ {
		samples := mat.NewDense(1, len(offsetBounds), nil)
		sampler.Sample(samples)
		offsets = append(offsets, samples)
	}

	return &TileCoder{
		numTilings:  numTilings,
		bounds:      bounds,
		offsets:     offsets,
		bins:        bins,
		binLengths:  binLengths,
		seed:        seed,
		includeBias: includeBias,
	}
}

// Calculates how many features exist in the tile-coded representation
// before tiling number i
func (t *TileCoder) featuresBeforeTiling(i int) int {
	features := 0
	for j := 0; j < i; j++ {
		features += prod(t.bins[j])
	}
	return features
}

// encodeWithTiling returns the index of the tile coded feature vector
// which should be a 1.0 when the input vector v is encoded with tiling
// number tiling in the TileCoder.
func (t *TileCoder) encodeWithTiling(v mat.Vector, tiling int) int {
	bias := 0
	if t.includeBias {
		bias = 1
	}

	// indexOffset is the index into the tile-coded vector at which
	// the current tiling will start
	indexOffset := t.featuresBeforeTiling(tiling)
	index := 0
	dims := len(t.bounds)

	// Tile code the vector based on the current tiling, treating the
	// tiles as a row-major array
	stride := 1
	for i := dims - 1; i > -1; i-- {
		// Offset the tiling
		data := v.AtVec(i) + t.offsets[tiling].At(0, tiling*dims+i)

		// Calculate the index of the tile along the current feature
		// dimension in which the feature falls
		tile := math.Floor((data - t.bounds[i].Min) /
			t.binLengths[tiling][i])

		// Clip tile to within tiling bounds
		tile = floatutils.Clip(tile, 0.0, float64(t.bins[tiling][i]-1))

		index += int(tile) * stride
		stride *= t.bins[tiling][i]
	}
	return indexOffset + index + bias
}

// EncodeIndices returns the non-zero indices in the tile coded vector
// when v is tile coded with the receiving TileCoder t. The bias unit,
// if used, is index 0 and is listed first.
func (t *TileCoder) EncodeIndices(v mat.Vector) []int {
	if v.Len() != len(t.bounds) {
		panic(fmt.Sprintf("encodeIndices: cannot encode a vector of "+
			"length %d with a %d-dimensional tile coder", v.Len(),
			len(t.bounds)))
	}

	indices := make([]int, 0, t.numTilings+1)
	if t.includeBias {
		indices = append(indices, 0)
	}
	for i := 0; i < t.numTilings; i++ {
		indices = append(indices, t.encodeWithTiling(v, i))
	}
	return indices
}

// Encode encodes a single vector as a tile-coded vector
func (t *TileCoder) Encode(v mat.Vector) *mat.VecDense {
	tileCoded := mat.NewVecDense(t.VecLength(), nil)

	for _, index := range t.EncodeIndices(v) {
		tileCoded.SetVec(index, 1.0)
	}
	return tileCoded
}

// String returns a string representation of a *TileCoder
func (t *TileCoder) String() string {
	return fmt.Sprintf("Tilings %d  |  Tiles: %v", t.numTilings, t.bins)
}

// VecLength returns the number of features in a tile-coded vector
func (t *TileCoder) VecLength() int {
	length := t.featuresBeforeTiling(t.numTilings)
	if t.includeBias {
		return length + 1
	}
	return length
}

// NumTilings returns the number of tilings the tile coder uses for
// encoding vectors
func (t *TileCoder) NumTilings() int {
	return t.numTilings
}

// prod calculates the product of all integers in a []int
func prod(i []int) int {
	prod := 1
	for _, v := range i {
		prod *= v
	}
	return prod
}
