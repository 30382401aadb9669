package recon

// Reconcile aligns master and comparison rows by key and classifies every key.
//
// Each side is first resolved with the mapping's duplicate strategy using
// its own key column and value fields. Master keys are then walked in
// first-appearance order:
//
//   - absent from comparison: DUPLICATE_IN_MASTER if the master group holds
//     several rows, else MISSING_IN_COMPARISON
//   - present on both sides: DUPLICATE_IN_MASTER takes priority over
//     DUPLICATE_IN_COMPARISON; two singletons are diffed column by column
//     and yield MATCH or MISMATCH
//
// Comparison keys not seen on the master side follow, in their own
// first-appearance order, as DUPLICATE_IN_COMPARISON or MISSING_IN_MASTER.
//
// The mapping is trusted: column names are not checked against the rows.
// Reconcile has no side effects and returns the same results for the same input.
func Reconcile(masterRows, comparisonRows []Row, mapping MappingConfig) []Result {
	strategy := mapping.Strategy()
	master := Resolve(masterRows, mapping.MasterKey, mapping.MasterFields(), strategy)
	comparison := Resolve(comparisonRows, mapping.ComparisonKey, mapping.ComparisonFields(), strategy)

	opts := mapping.CompareOptions()
	results := make([]Result, 0, master.Len()+comparison.Len())
	consumed := make(map[string]bool, comparison.Len())

	for _, key := range master.Keys() {
		mGroup, _ := master.Group(key)
		cGroup, inComparison := comparison.Group(key)

		if !inComparison {
			if len(mGroup) > 1 {
				results = append(results, duplicateResult(key, StatusDuplicateInMaster, mGroup))
			} else {
				results = append(results, Result{
					Key:       key,
					Status:    StatusMissingInComparison,
					MasterRow: mGroup[0],
					Diffs:     []Diff{},
				})
			}
			continue
		}

		consumed[key] = true
		switch {
		case len(mGroup) > 1:
			r := duplicateResult(key, StatusDuplicateInMaster, mGroup)
			r.ComparisonRow = cGroup[0]
			results = append(results, r)
		case len(cGroup) > 1:
			r := duplicateResult(key, StatusDuplicateInComparison, cGroup)
			r.MasterRow = mGroup[0]
			results = append(results, r)
		default:
			results = append(results, compareRows(key, mGroup[0], cGroup[0], mapping.ValueColumns, opts))
		}
	}

	for _, key := range comparison.Keys() {
		if consumed[key] {
			continue
		}
		cGroup, _ := comparison.Group(key)
		if len(cGroup) > 1 {
			results = append(results, duplicateResult(key, StatusDuplicateInComparison, cGroup))
			continue
		}
		results = append(results, Result{
			Key:           key,
			Status:        StatusMissingInMaster,
			ComparisonRow: cGroup[0],
			Diffs:         []Diff{},
		})
	}

	return results
}

// duplicateResult reports a key whose group on one side holds several rows.
// The first row of the group stands in as that side's representative.
func duplicateResult(key string, status Status, group []Row) Result {
	r := Result{
		Key:           key,
		Status:        status,
		Diffs:         []Diff{},
		DuplicateRows: group,
	}
	if status == StatusDuplicateInMaster {
		r.MasterRow = group[0]
	} else {
		r.ComparisonRow = group[0]
	}
	return r
}

// compareRows diffs every value column pair of a matched key.
func compareRows(key string, masterRow, comparisonRow Row, pairs []ColumnPair, opts CompareOptions) Result {
	diffs := make([]Diff, len(pairs))
	allMatch := true
	for i, p := range pairs {
		mv, cv := masterRow.Get(p.Master), comparisonRow.Get(p.Comparison)
		match := ValuesEqual(mv, cv, opts)
		diffs[i] = Diff{
			ColumnName:      p.DisplayName(),
			MasterValue:     mv,
			ComparisonValue: cv,
			IsMatch:         match,
		}
		if !match {
			allMatch = false
		}
	}

	status := StatusMatch
	if !allMatch {
		status = StatusMismatch
	}
	return Result{
		Key:           key,
		Status:        status,
		MasterRow:     masterRow,
		ComparisonRow: comparisonRow,
		Diffs:         diffs,
	}
}
