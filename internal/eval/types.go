package eval

// #region eval-metric
// EvalMetric captures a single validation check result.
type EvalMetric struct {
	Name  string
	Value int
	Pass  bool
}

// #endregion eval-metric

// #region eval-result
// EvalResult is the output of post-transition validation.
type EvalResult struct {
	Passed  bool
	Metrics []EvalMetric
	Reason  string
}

// #endregion eval-result
