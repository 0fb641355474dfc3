package dataset

import (
	"fmt"
	"math"
	"math/rand"
)

// SplitSizes returns the train and test row counts for n rows.
// The test share is rounded up, so at least one test row exists when n > 1.
func SplitSizes(n int, testSize float64) (train, test int, err error) {
	if testSize <= 0 || testSize >= 1 {
		return 0, 0, fmt.Errorf("test size must be in (0, 1), got %v", testSize)
	}
	test = int(math.Ceil(testSize * float64(n)))
	train = n - test
	if train <= 0 || test <= 0 {
		return 0, 0, fmt.Errorf("cannot split %d rows with test size %v", n, testSize)
	}
	return train, test, nil
}

// Split shuffles items with a seeded PRNG and returns (train, test).
// The same input and seed always produce the same partition.
func Split[T any](items []T, testSize float64, seed int64) ([]T, []T, error) {
	nTrain, _, err := SplitSizes(len(items), testSize)
	if err != nil {
		return nil, nil, err
	}

	perm := rand.New(rand.NewSource(seed)).Perm(len(items))

	train := make([]T, 0, nTrain)
	test := make([]T, 0, len(items)-nTrain)
	for i, idx := range perm {
		if i < nTrain {
			train = append(train, items[idx])
		} else {
			test = append(test, items[idx])
		}
	}

	return train, test, nil
}
