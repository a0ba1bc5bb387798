package fileInfo

import (
	"math"
	"strconv"
	"strings"
	"time"

	"commercial-file-service/pkg/clock"

	"github.com/google/uuid"
)

const InitialVersion = "1.0"

type File struct {
	ID                   uuid.UUID  `json:"id"`
	FileName             string     `json:"file_name"`
	FileURL              string     `json:"file_url"`
	FileSize             int64      `json:"file_size"`
	FileType             string     `json:"file_type"`
	UploadDate           time.Time  `json:"upload_date"`
	ValidityDate         *time.Time `json:"validity_date,omitempty"`
	ExpiryDate           time.Time  `json:"expiry_date"`
	FileVersion          string     `json:"file_version"`
	Description          string     `json:"description"`
	UploadedByID         uint32     `json:"uploaded_by_id"`
	AssignedKARID        uint32     `json:"assigned_kar_id"`
	RegionID             int64      `json:"region_id"`
	ChannelPartnerTypeID int64      `json:"channel_partner_type_id"`
	LockVersion          int64      `json:"lock_version"`
	Active               bool       `json:"active"`
}

// IsExpired reports whether today is strictly after the expiry date.
func (f *File) IsExpired(today time.Time) bool {
	return clock.DateOf(today).After(clock.DateOf(f.ExpiryDate))
}

func (f *File) IsExpiringSoon(today time.Time, days int) bool {
	if f.IsExpired(today) {
		return false
	}
	threshold := clock.DateOf(today).AddDate(0, 0, days)
	return !clock.DateOf(f.ExpiryDate).After(threshold)
}

// IsValid is true while today lies in [ValidityDate, ExpiryDate]. Without a validity
// date the file is valid until it expires.
func (f *File) IsValid(today time.Time) bool {
	if f.ValidityDate == nil {
		return !f.IsExpired(today)
	}
	d := clock.DateOf(today)
	return !d.Before(clock.DateOf(*f.ValidityDate)) && !d.After(clock.DateOf(f.ExpiryDate))
}

// IncrementVersion bumps the minor part of a "<major>.<minor>" label.
// Labels that do not parse get ".1" appended instead.
func IncrementVersion(current string) string {
	parts := strings.Split(current, ".")
	if len(parts) != 2 {
		return current + ".1"
	}
	major, err := strconv.ParseUint(parts[0], 10, 64)
	if err != nil {
		return current + ".1"
	}
	minor, err := strconv.ParseUint(parts[1], 10, 64)
	if err != nil || minor == math.MaxUint64 {
		return current + ".1"
	}
	return strconv.FormatUint(major, 10) + "." + strconv.FormatUint(minor+1, 10)
}

type FileHistory struct {
	ID                uuid.UUID `json:"id"`
	FileID            uuid.UUID `json:"file_id"`
	FileVersion       string    `json:"file_version"`
	FileURL           string    `json:"file_url"`
	FileName          string    `json:"file_name"`
	FileSize          int64     `json:"file_size"`
	FileType          string    `json:"file_type"`
	ModifiedDate      time.Time `json:"modified_date"`
	ChangeDescription string    `json:"change_description"`
	ModifiedByID      uint32    `json:"modified_by_id"`
	Active            bool      `json:"active"`
}

// Snapshot copies the content-identifying fields of f as they are right now.
func Snapshot(f *File, modifiedBy uint32, description string, at time.Time) *FileHistory {
	return &FileHistory{
		ID:                uuid.New(),
		FileID:            f.ID,
		FileVersion:       f.FileVersion,
		FileURL:           f.FileURL,
		FileName:          f.FileName,
		FileSize:          f.FileSize,
		FileType:          f.FileType,
		ModifiedDate:      at,
		ChangeDescription: description,
		ModifiedByID:      modifiedBy,
		Active:            true,
	}
}
