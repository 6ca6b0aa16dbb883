package saved

import "github.com/RegaWeng/riseUp/pkg/role"

// DataKind names one of the four persisted collections.
type DataKind string

const (
	DataSavedJobs       DataKind = "savedJobs"
	DataSavedVideos     DataKind = "savedVideos"
	DataCompletedVideos DataKind = "completedVideos"
	DataAppliedJobs     DataKind = "appliedJobs"
)

var DataKinds = []DataKind{DataSavedJobs, DataSavedVideos, DataCompletedVideos, DataAppliedJobs}

// Key returns the storage key of a collection, e.g. "savedJobs_user".
func Key(kind DataKind, r role.Role) string {
	return string(kind) + "_" + string(r)
}

// Keys holds the four storage keys of a role-context.
type Keys struct {
	SavedJobs       string
	SavedVideos     string
	CompletedVideos string
	AppliedJobs     string
}

func KeysFor(r role.Role) Keys {
	return Keys{
		SavedJobs:       Key(DataSavedJobs, r),
		SavedVideos:     Key(DataSavedVideos, r),
		CompletedVideos: Key(DataCompletedVideos, r),
		AppliedJobs:     Key(DataAppliedJobs, r),
	}
}

// For returns the key of one collection.
func (k Keys) For(kind DataKind) string {
	switch kind {
	case DataSavedJobs:
		return k.SavedJobs
	case DataSavedVideos:
		return k.SavedVideos
	case DataCompletedVideos:
		return k.CompletedVideos
	case DataAppliedJobs:
		return k.AppliedJobs
	}
	return ""
}

// All returns the four keys in DataKinds order.
func (k Keys) All() []string {
	out := make([]string, 0, len(DataKinds))
	for _, kind := range DataKinds {
		out = append(out, k.For(kind))
	}
	return out
}
