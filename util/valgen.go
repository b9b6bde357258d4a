// Some helpers using closures to generate element values
package valgen

import "math/rand"

func MakeConstGen(constant int8) func() int8 {
	return func() int8 {
		return constant
	}
}

func MakeIncreasingGen(start int8) func() int8 {
	current := start
	return func() int8 {
		current++
		return current
	}
}

// MakeRandGen produces values in [-bound, bound] from a fixed seed, so
// generated fixtures are reproducible.
func MakeRandGen(seed int64, bound int8) func() int8 {
	r := rand.New(rand.NewSource(seed))
	return func() int8 {
		return int8(r.Intn(2*int(bound)+1) - int(bound))
	}
}
