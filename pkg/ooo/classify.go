// Copyright 2021 - 2022 Cairnstore
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package ooo

// Classify decides how the batch slice [srcOooLo..srcOooHi] overlaps the
// existing partition rows [0..srcDataMax) and decomposes the splice into
// prefix, merge and suffix blocks. dataTs is the mapped timestamp column,
// sorted the batch-wide timestamp index.
func Classify(
	dataTs []int64,
	srcDataMax int64,
	dataTimestampLo int64,
	dataTimestampHi int64,
	sorted []TimestampEntry,
	srcOooLo int64,
	srcOooHi int64,
	oooTimestampLo int64,
	oooTimestampMax int64,
) SplicePlan {
	p := emptyPlan()

	if oooTimestampLo > dataTimestampLo {
		if oooTimestampLo > dataTimestampHi {
			// batch slice lands entirely after the partition
			p.SuffixKind = BlockOO
			p.SuffixLo = srcOooLo
			p.SuffixHi = srcOooHi
		} else {
			p.PrefixKind = BlockData
			p.PrefixLo = 0
			p.PrefixHi = SearchInt64(dataTs, oooTimestampLo, 0, srcDataMax-1, ScanDown)
			p.MergeDataLo = p.PrefixHi + 1
			p.MergeOOOLo = srcOooLo

			switch {
			case oooTimestampMax < dataTimestampHi:
				// batch slice sits inside the partition body
				p.MergeOOOHi = srcOooHi
				p.MergeDataHi = SearchInt64(dataTs, oooTimestampMax-1, p.MergeDataLo, srcDataMax-1, ScanDown) + 1

				if p.MergeDataLo < p.MergeDataHi {
					p.MergeKind = BlockMerge
				} else {
					// the slice implodes between two adjacent data rows
					p.MergeKind = BlockOO
					p.MergeDataHi--
				}

				p.SuffixKind = BlockData
				p.SuffixLo = p.MergeDataHi + 1
				p.SuffixHi = srcDataMax - 1
			case oooTimestampMax > dataTimestampHi:
				// batch slice straddles the partition tail
				p.MergeOOOHi = SearchEntries(sorted, dataTimestampHi, srcOooLo, srcOooHi, ScanUp)
				p.MergeDataHi = srcDataMax - 1

				p.MergeKind = BlockMerge
				p.SuffixKind = BlockOO
				p.SuffixLo = p.MergeOOOHi + 1
				p.SuffixHi = srcOooHi
			default:
				// slice max coincides with the partition tail
				p.MergeKind = BlockMerge
				p.MergeOOOHi = srcOooHi
				p.MergeDataHi = srcDataMax - 1
			}
		}
	} else {
		p.PrefixKind = BlockOO
		p.PrefixLo = srcOooLo
		if dataTimestampLo < oooTimestampMax {
			p.MergeDataLo = 0
			p.PrefixHi = SearchEntries(sorted, dataTimestampLo, srcOooLo, srcOooHi, ScanDown)
			p.MergeOOOLo = p.PrefixHi + 1

			switch {
			case oooTimestampMax < dataTimestampHi:
				// batch slice covers the partition head
				p.MergeKind = BlockMerge
				p.MergeOOOHi = srcOooHi
				p.MergeDataHi = SearchInt64(dataTs, oooTimestampMax, 0, srcDataMax-1, ScanDown)

				p.SuffixKind = BlockData
				p.SuffixLo = p.MergeDataHi + 1
				p.SuffixHi = srcDataMax - 1
			case oooTimestampMax > dataTimestampHi:
				// batch slice envelops the partition
				p.MergeDataHi = srcDataMax - 1
				p.MergeOOOHi = SearchEntries(sorted, dataTimestampHi-1, p.MergeOOOLo, srcOooHi, ScanDown) + 1

				if p.MergeOOOLo < p.MergeOOOHi {
					p.MergeKind = BlockMerge
				} else {
					p.MergeKind = BlockData
					p.MergeOOOHi--
				}

				if p.MergeOOOHi < srcOooHi {
					p.SuffixLo = p.MergeOOOHi + 1
					p.SuffixKind = BlockOO
					p.SuffixHi = srcOooHi
					if p.SuffixLo > p.SuffixHi {
						p.SuffixHi = p.SuffixLo
					}
				} else {
					p.SuffixKind = BlockNone
				}
			default:
				// slice max coincides with the partition tail
				p.MergeKind = BlockMerge
				p.MergeOOOHi = srcOooHi
				p.MergeDataHi = srcDataMax - 1
			}
		} else {
			// entire slice precedes the partition
			p.PrefixHi = srcOooHi
			p.SuffixKind = BlockData
			p.SuffixLo = 0
			p.SuffixHi = srcDataMax - 1
		}
	}
	return p
}
