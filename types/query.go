package types

// PatientInfo is the patient-level summary of an instance.
type PatientInfo struct {
	Name      string
	ID        string
	Sex       string
	BirthDate string
	Age       string
}

// StudyInfo is the study-level summary of an instance.
type StudyInfo struct {
	InstanceUID     string
	Date            string
	Time            string
	Description     string
	AccessionNumber string
}

// SeriesInfo is the series-level summary of an instance.
type SeriesInfo struct {
	InstanceUID string
	Number      int
	Description string
	Modality    string
	Date        string
	Time        string
}

// InstanceInfo identifies one instance and its position in the patient frame.
type InstanceInfo struct {
	SOPClassUID             string
	SOPClassName            string
	SOPInstanceUID          string
	InstanceNumber          int
	AcquisitionNumber       int
	ImagePositionPatient    []float64
	ImageOrientationPatient []float64
}

// ImageInfo carries the geometry and display defaults of an image.
type ImageInfo struct {
	Rows             int
	Columns          int
	PixelSpacing     []float64
	SliceThickness   *float64
	SliceLocation    *float64
	BitsAllocated    int
	BitsStored       int
	WindowCenter     []float64
	WindowWidth      []float64
	RescaleIntercept float64
	RescaleSlope     float64
}

// Metadata groups every summary level of one instance.
type Metadata struct {
	Patient  PatientInfo
	Study    StudyInfo
	Series   SeriesInfo
	Instance InstanceInfo
	Image    ImageInfo
}
