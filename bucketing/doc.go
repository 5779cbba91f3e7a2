/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

/*
Package bucketing partitions analysis cases into buckets.

Three strategies are provided, each a plain function over (case, value) pairs:

  - Continuous: equal-frequency numeric ranges. Cases are stably sorted by
    value and split into at most bucketNumber groups of roughly equal size.
    Ties never straddle a boundary; they stay in the lower bucket. Each
    bucket is labelled with the closed interval [min, max] of the values it
    holds, so the first and last buckets are never open-ended. When there are
    fewer distinct values than buckets, fewer (non-empty) buckets are emitted.
  - Discrete: one bucket per distinct value (compared by string form), ranked
    by descending frequency with ties broken by name. The top bucketNumber
    values become named buckets. All other values are folded into a trailing
    bucket named OtherBucketName, unless DiscreteSetting.DropRemainder is set,
    in which case only the top values are kept and the remainder discarded.
  - Fixed: caller supplied intervals (half-open, the final one closed) or
    labels. One bucket is emitted per entry, in order, including empty ones.
    Values matching no entry are excluded.

Strategies are resolved by name through a static registry:

	strategy, err := bucketing.New("fixed", [][2]float64{{0, 0.5}, {0.5, 1}})
	if err != nil {
		return err
	}
	buckets, err := strategy.Bucket(samples, 2)

New parses the strategy specific setting up front so that configuration
errors surface when an analysis is constructed rather than when it runs.
*/
package bucketing
