package grouping

// Policy centralizes confidence values and thresholds used by the strategies
// and the quarantine decision.
type Policy struct {
	RowGroupConfidence    float64
	RowCorroborationStep  float64
	RowGroupConfidenceCap float64
	FileIDMatchScore      int
	FileNameMatchScore    int
	FileAttachMinScore    int
	FileAttachStep        float64
	FileAttachCap         float64
	UnassignedConfidence  float64
	FolderIDConfidence    float64
	FolderNoIDConfidence  float64
	FilenameIDConfidence  float64
	FallbackConfidence    float64
	NoIdentifierCap       float64
	ShortNumericIDCap     float64
	ShortNumericIDMinLen  int
	QuarantineThreshold   float64
}

// DefaultPolicy returns the standard confidence values.
func DefaultPolicy() Policy {
	return Policy{
		RowGroupConfidence:    0.8,
		RowCorroborationStep:  0.03,
		RowGroupConfidenceCap: 0.92,
		FileIDMatchScore:      10,
		FileNameMatchScore:    4,
		FileAttachMinScore:    6,
		FileAttachStep:        0.02,
		FileAttachCap:         0.95,
		UnassignedConfidence:  0.3,
		FolderIDConfidence:    0.85,
		FolderNoIDConfidence:  0.55,
		FilenameIDConfidence:  0.82,
		FallbackConfidence:    0.2,
		NoIdentifierCap:       0.35,
		ShortNumericIDCap:     0.45,
		ShortNumericIDMinLen:  4,
		QuarantineThreshold:   0.55,
	}
}

func validUnit(v float64) bool {
	return v > 0 && v <= 1
}

func (p Policy) normalized() Policy {
	d := DefaultPolicy()

	if !validUnit(p.RowGroupConfidence) {
		p.RowGroupConfidence = d.RowGroupConfidence
	}
	if p.RowCorroborationStep < 0 || p.RowCorroborationStep >= 1 {
		p.RowCorroborationStep = d.RowCorroborationStep
	}
	if !validUnit(p.RowGroupConfidenceCap) {
		p.RowGroupConfidenceCap = d.RowGroupConfidenceCap
	}
	if p.FileIDMatchScore <= 0 {
		p.FileIDMatchScore = d.FileIDMatchScore
	}
	if p.FileNameMatchScore <= 0 {
		p.FileNameMatchScore = d.FileNameMatchScore
	}
	if p.FileAttachMinScore <= 0 {
		p.FileAttachMinScore = d.FileAttachMinScore
	}
	if p.FileAttachStep < 0 || p.FileAttachStep >= 1 {
		p.FileAttachStep = d.FileAttachStep
	}
	if !validUnit(p.FileAttachCap) {
		p.FileAttachCap = d.FileAttachCap
	}
	if !validUnit(p.UnassignedConfidence) {
		p.UnassignedConfidence = d.UnassignedConfidence
	}
	if !validUnit(p.FolderIDConfidence) {
		p.FolderIDConfidence = d.FolderIDConfidence
	}
	if !validUnit(p.FolderNoIDConfidence) {
		p.FolderNoIDConfidence = d.FolderNoIDConfidence
	}
	if !validUnit(p.FilenameIDConfidence) {
		p.FilenameIDConfidence = d.FilenameIDConfidence
	}
	if !validUnit(p.FallbackConfidence) {
		p.FallbackConfidence = d.FallbackConfidence
	}
	if !validUnit(p.NoIdentifierCap) {
		p.NoIdentifierCap = d.NoIdentifierCap
	}
	if !validUnit(p.ShortNumericIDCap) {
		p.ShortNumericIDCap = d.ShortNumericIDCap
	}
	if p.ShortNumericIDMinLen <= 0 {
		p.ShortNumericIDMinLen = d.ShortNumericIDMinLen
	}
	if p.QuarantineThreshold < 0 || p.QuarantineThreshold > 1 {
		p.QuarantineThreshold = d.QuarantineThreshold
	}

	return p
}
