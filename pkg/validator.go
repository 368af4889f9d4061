package trials

// ValidateOnsetCount compares the number of onsets with the expected trial
// count. A nil expected count disables the check. When tolerant is set a
// mismatch is only reported as a warning in diags.
func ValidateOnsetCount(onsets []float64, expected *int, tolerant bool, block string, diags *Diagnostics) error {
	if expected == nil {
		diags.Debugf("validator", "block %s: no expected trial count, found %d onsets", block, len(onsets))
		return nil
	}
	if len(onsets) == *expected {
		diags.Debugf("validator", "block %s: found the expected %d onsets", block, len(onsets))
		return nil
	}

	mismatch := &ErrOnsetCountMismatch{
		Expected: *expected,
		Found:    len(onsets),
		Block:    block,
	}
	if !tolerant {
		return mismatch
	}
	diags.Warnf("validator", "%s; continuing", mismatch.Error())
	return nil
}
