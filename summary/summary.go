// Package summary extracts the patient, study, series, instance and image
// records a viewer shows next to an image.
package summary

import (
	"strconv"
	"strings"

	"github.com/caio-sobreiro/dicomfile/interfaces"
	"github.com/caio-sobreiro/dicomfile/types"
)

// Unknown replaces absent descriptive attributes.
const Unknown = "Unknown"

// Patient extracts the patient-level record.
func Patient(ds interfaces.DatasetReader) types.PatientInfo {
	return types.PatientInfo{
		Name:      text(ds, "PatientName", Unknown),
		ID:        text(ds, "PatientID", Unknown),
		Sex:       text(ds, "PatientSex", Unknown),
		BirthDate: text(ds, "PatientBirthDate", Unknown),
		Age:       text(ds, "PatientAge", Unknown),
	}
}

// Study extracts the study-level record.
func Study(ds interfaces.DatasetReader) types.StudyInfo {
	return types.StudyInfo{
		InstanceUID:     text(ds, "StudyInstanceUID", ""),
		Date:            text(ds, "StudyDate", Unknown),
		Time:            text(ds, "StudyTime", Unknown),
		Description:     text(ds, "StudyDescription", Unknown),
		AccessionNumber: text(ds, "AccessionNumber", Unknown),
	}
}

// Series extracts the series-level record.
func Series(ds interfaces.DatasetReader) types.SeriesInfo {
	return types.SeriesInfo{
		InstanceUID: text(ds, "SeriesInstanceUID", ""),
		Number:      integer(ds, "SeriesNumber"),
		Description: text(ds, "SeriesDescription", Unknown),
		Modality:    text(ds, "Modality", Unknown),
		Date:        text(ds, "SeriesDate", Unknown),
		Time:        text(ds, "SeriesTime", Unknown),
	}
}

// Instance extracts the instance-level record. SOPClassName comes from the
// SOP class registry.
func Instance(ds interfaces.DatasetReader) types.InstanceInfo {
	info := types.InstanceInfo{
		SOPClassUID:             text(ds, "SOPClassUID", ""),
		SOPInstanceUID:          text(ds, "SOPInstanceUID", ""),
		InstanceNumber:          integer(ds, "InstanceNumber"),
		AcquisitionNumber:       integer(ds, "AcquisitionNumber"),
		ImagePositionPatient:    floats(ds, "ImagePositionPatient"),
		ImageOrientationPatient: floats(ds, "ImageOrientationPatient"),
	}
	if info.SOPClassUID != "" {
		info.SOPClassName = types.GetSOPClassInfo(info.SOPClassUID).Name
	}
	return info
}

// Image extracts geometry and display defaults. Rescale slope defaults to 1.
func Image(ds interfaces.DatasetReader) types.ImageInfo {
	info := types.ImageInfo{
		Rows:           integer(ds, "Rows"),
		Columns:        integer(ds, "Columns"),
		PixelSpacing:   floats(ds, "PixelSpacing"),
		SliceThickness: optional(ds, "SliceThickness"),
		SliceLocation:  optional(ds, "SliceLocation"),
		BitsAllocated:  integer(ds, "BitsAllocated"),
		BitsStored:     integer(ds, "BitsStored"),
		WindowCenter:   floats(ds, "WindowCenter"),
		WindowWidth:    floats(ds, "WindowWidth"),
		RescaleSlope:   1,
	}
	if v := optional(ds, "RescaleIntercept"); v != nil {
		info.RescaleIntercept = *v
	}
	if v := optional(ds, "RescaleSlope"); v != nil {
		info.RescaleSlope = *v
	}
	return info
}

// All extracts every record.
func All(ds interfaces.DatasetReader) types.Metadata {
	return types.Metadata{
		Patient:  Patient(ds),
		Study:    Study(ds),
		Series:   Series(ds),
		Instance: Instance(ds),
		Image:    Image(ds),
	}
}

func text(ds interfaces.DatasetReader, name, def string) string {
	e, ok := ds.GetByName(name)
	if !ok {
		return def
	}
	if s := e.Strings(); len(s) > 0 {
		return strings.Join(s, `\`)
	}
	if v := e.ValueString(); v != "" {
		return v
	}
	return def
}

func integer(ds interfaces.DatasetReader, name string) int {
	e, ok := ds.GetByName(name)
	if !ok {
		return 0
	}
	if n, ok := ds.Int(e.Tag); ok {
		return n
	}
	return 0
}

func floats(ds interfaces.DatasetReader, name string) []float64 {
	e, ok := ds.GetByName(name)
	if !ok {
		return nil
	}
	v, _ := ds.Floats(e.Tag)
	return v
}

func optional(ds interfaces.DatasetReader, name string) *float64 {
	e, ok := ds.GetByName(name)
	if !ok {
		return nil
	}
	v, ok := ds.Float(e.Tag)
	if !ok {
		return nil
	}
	return &v
}

// Format renders the records as "Section.Field: value" lines.
func Format(m types.Metadata) string {
	var b strings.Builder
	line := func(section, field, value string) {
		b.WriteString(section)
		b.WriteByte('.')
		b.WriteString(field)
		b.WriteString(": ")
		b.WriteString(value)
		b.WriteByte('\n')
	}
	num := func(v []float64) string {
		parts := make([]string, len(v))
		for i, f := range v {
			parts[i] = strconv.FormatFloat(f, 'g', -1, 64)
		}
		return strings.Join(parts, `\`)
	}
	ptr := func(v *float64) string {
		if v == nil {
			return ""
		}
		return strconv.FormatFloat(*v, 'g', -1, 64)
	}

	line("Patient", "Name", m.Patient.Name)
	line("Patient", "ID", m.Patient.ID)
	line("Patient", "Sex", m.Patient.Sex)
	line("Patient", "BirthDate", m.Patient.BirthDate)
	line("Patient", "Age", m.Patient.Age)
	line("Study", "InstanceUID", m.Study.InstanceUID)
	line("Study", "Date", m.Study.Date)
	line("Study", "Time", m.Study.Time)
	line("Study", "Description", m.Study.Description)
	line("Study", "AccessionNumber", m.Study.AccessionNumber)
	line("Series", "InstanceUID", m.Series.InstanceUID)
	line("Series", "Number", strconv.Itoa(m.Series.Number))
	line("Series", "Description", m.Series.Description)
	line("Series", "Modality", m.Series.Modality)
	line("Series", "Date", m.Series.Date)
	line("Series", "Time", m.Series.Time)
	line("Instance", "SOPClassUID", m.Instance.SOPClassUID)
	line("Instance", "SOPClassName", m.Instance.SOPClassName)
	line("Instance", "SOPInstanceUID", m.Instance.SOPInstanceUID)
	line("Instance", "InstanceNumber", strconv.Itoa(m.Instance.InstanceNumber))
	line("Instance", "AcquisitionNumber", strconv.Itoa(m.Instance.AcquisitionNumber))
	line("Instance", "ImagePositionPatient", num(m.Instance.ImagePositionPatient))
	line("Instance", "ImageOrientationPatient", num(m.Instance.ImageOrientationPatient))
	line("Image", "Rows", strconv.Itoa(m.Image.Rows))
	line("Image", "Columns", strconv.Itoa(m.Image.Columns))
	line("Image", "PixelSpacing", num(m.Image.PixelSpacing))
	line("Image", "SliceThickness", ptr(m.Image.SliceThickness))
	line("Image", "SliceLocation", ptr(m.Image.SliceLocation))
	line("Image", "BitsAllocated", strconv.Itoa(m.Image.BitsAllocated))
	line("Image", "BitsStored", strconv.Itoa(m.Image.BitsStored))
	line("Image", "WindowCenter", num(m.Image.WindowCenter))
	line("Image", "WindowWidth", num(m.Image.WindowWidth))
	line("Image", "RescaleIntercept", strconv.FormatFloat(m.Image.RescaleIntercept, 'g', -1, 64))
	line("Image", "RescaleSlope", strconv.FormatFloat(m.Image.RescaleSlope, 'g', -1, 64))
	return b.String()
}
