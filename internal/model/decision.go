package model

// SkipReason explains why a row is not processed.
type SkipReason int

const (
	NotSkipped SkipReason = iota
	SkipNotReady
	SkipNotRequested
	SkipAlreadyUploaded
	SkipMissingFile
	SkipMissingPrefix
)

func (r SkipReason) String() string {
	switch r {
	case SkipNotReady:
		return "not ready"
	case SkipNotRequested:
		return "upload not requested"
	case SkipAlreadyUploaded:
		return "already uploaded"
	case SkipMissingFile:
		return "filename or folder missing"
	case SkipMissingPrefix:
		return "product prefix missing"
	default:
		return "none"
	}
}

// Decision is the outcome of classifying a row.
type Decision struct {
	Skip   bool
	Reason SkipReason
}

// Process is the decision for an eligible row.
var Process = Decision{}

func skip(r SkipReason) Decision {
	return Decision{Skip: true, Reason: r}
}

// Classify decides whether a row is eligible for upload.
// Checks run in order and the first failing one wins.
func Classify(row PartRow) Decision {
	switch {
	case !row.Ready:
		return skip(SkipNotReady)
	case !row.UploadRequested:
		return skip(SkipNotRequested)
	case row.Status == StatusSuccess:
		return skip(SkipAlreadyUploaded)
	case row.Filename == "" || row.FolderPath == "":
		return skip(SkipMissingFile)
	case row.ProductPrefix == "":
		return skip(SkipMissingPrefix)
	}
	return Process
}
