package payload

import (
	"google.golang.org/protobuf/encoding/protowire"

	"github.com/zlnvch/tracereport/models"
)

// Wire layout of the upload payload:
//
//	message UserUploadPayload {
//	  uint32 version = 1;
//	  repeated UploadVenueInfo venue_infos = 2;
//	  uint32 user_interaction_duration_ms = 3;
//	}
//
//	message UploadVenueInfo {
//	  bytes pre_id = 1;
//	  bytes time_key = 2;
//	  bytes notification_key = 3;
//	  int64 interval_start_ms = 4;
//	  int64 interval_end_ms = 5;
//	  bool fake = 6;
//	}
const (
	fieldVersion             = 1
	fieldVenueInfos          = 2
	fieldInteractionDuration = 3

	fieldPreId           = 1
	fieldTimeKey         = 2
	fieldNotificationKey = 3
	fieldIntervalStartMs = 4
	fieldIntervalEndMs   = 5
	fieldFake            = 6
)

// Marshal serializes the batch to the application/x-protobuf body the
// upload endpoint expects.
func Marshal(b Batch) []byte {
	// ~110 bytes per record; preallocate to avoid regrowth over 1024 records
	buf := make([]byte, 0, len(b.VenueInfos)*112+16)

	buf = protowire.AppendTag(buf, fieldVersion, protowire.VarintType)
	buf = protowire.AppendVarint(buf, uint64(b.Version))

	for _, info := range b.VenueInfos {
		buf = protowire.AppendTag(buf, fieldVenueInfos, protowire.BytesType)
		buf = protowire.AppendBytes(buf, marshalVenueInfo(info))
	}

	buf = protowire.AppendTag(buf, fieldInteractionDuration, protowire.VarintType)
	buf = protowire.AppendVarint(buf, uint64(b.InteractionDurationMs))

	return buf
}

func marshalVenueInfo(info models.UploadVenueInfo) []byte {
	buf := make([]byte, 0, 128)

	buf = protowire.AppendTag(buf, fieldPreId, protowire.BytesType)
	buf = protowire.AppendBytes(buf, info.PreId)
	buf = protowire.AppendTag(buf, fieldTimeKey, protowire.BytesType)
	buf = protowire.AppendBytes(buf, info.TimeKey)
	buf = protowire.AppendTag(buf, fieldNotificationKey, protowire.BytesType)
	buf = protowire.AppendBytes(buf, info.NotificationKey)
	buf = protowire.AppendTag(buf, fieldIntervalStartMs, protowire.VarintType)
	buf = protowire.AppendVarint(buf, uint64(info.IntervalStartMs))
	buf = protowire.AppendTag(buf, fieldIntervalEndMs, protowire.VarintType)
	buf = protowire.AppendVarint(buf, uint64(info.IntervalEndMs))
	buf = protowire.AppendTag(buf, fieldFake, protowire.VarintType)
	if info.Fake {
		buf = protowire.AppendVarint(buf, 1)
	} else {
		buf = protowire.AppendVarint(buf, 0)
	}

	return buf
}
