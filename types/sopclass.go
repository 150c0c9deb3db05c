package types

// Image and document storage SOP Class UIDs (PS3.4 Annex B.5) that commonly
// appear as (0002,0002) / (0008,0016) in files read by this module.
const (
	ComputedRadiographyImageStorage                   = "1.2.840.10008.5.1.4.1.1.1"
	DigitalXRayImageStorageForPresentation            = "1.2.840.10008.5.1.4.1.1.1.1"
	DigitalXRayImageStorageForProcessing              = "1.2.840.10008.5.1.4.1.1.1.1.1"
	DigitalMammographyXRayImageStorageForPresentation = "1.2.840.10008.5.1.4.1.1.1.2"
	CTImageStorage                                    = "1.2.840.10008.5.1.4.1.1.2"
	EnhancedCTImageStorage                            = "1.2.840.10008.5.1.4.1.1.2.1"
	UltrasoundMultiFrameImageStorage                  = "1.2.840.10008.5.1.4.1.1.3.1"
	MRImageStorage                                    = "1.2.840.10008.5.1.4.1.1.4"
	EnhancedMRImageStorage                            = "1.2.840.10008.5.1.4.1.1.4.1"
	UltrasoundImageStorage                            = "1.2.840.10008.5.1.4.1.1.6.1"
	SecondaryCaptureImageStorage                      = "1.2.840.10008.5.1.4.1.1.7"
	MultiFrameGrayscaleWordSecondaryCaptureStorage    = "1.2.840.10008.5.1.4.1.1.7.2"
	MultiFrameTrueColorSecondaryCaptureStorage        = "1.2.840.10008.5.1.4.1.1.7.3"
	XRayAngiographicImageStorage                      = "1.2.840.10008.5.1.4.1.1.12.1"
	XRayRadiofluoroscopicImageStorage                 = "1.2.840.10008.5.1.4.1.1.12.2"
	NuclearMedicineImageStorage                       = "1.2.840.10008.5.1.4.1.1.20"
	VLPhotographicImageStorage                        = "1.2.840.10008.5.1.4.1.1.77.1.4"
	EncapsulatedPDFStorage                            = "1.2.840.10008.5.1.4.1.1.104.1"
	PETImageStorage                                   = "1.2.840.10008.5.1.4.1.1.128"
	RTImageStorage                                    = "1.2.840.10008.5.1.4.1.1.481.1"
	RTDoseStorage                                     = "1.2.840.10008.5.1.4.1.1.481.2"
	RTStructureSetStorage                             = "1.2.840.10008.5.1.4.1.1.481.3"
	MediaStorageDirectoryStorage                      = "1.2.840.10008.1.3.10"
)

// SOPClassInfo provides human-readable information about a SOP Class UID
type SOPClassInfo struct {
	UID      string
	Name     string
	Modality string
	HasImage bool
}

// GetSOPClassInfo returns information about a SOP Class UID
func GetSOPClassInfo(uid string) *SOPClassInfo {
	info, ok := sopClassRegistry[uid]
	if !ok {
		return &SOPClassInfo{UID: uid, Name: "Unknown"}
	}
	return &info
}

// IsImageSOPClass returns true if instances of the class carry pixel data.
func IsImageSOPClass(uid string) bool {
	return GetSOPClassInfo(uid).HasImage
}

func imageClass(uid, name, modality string) SOPClassInfo {
	return SOPClassInfo{UID: uid, Name: name, Modality: modality, HasImage: true}
}

var sopClassRegistry = map[string]SOPClassInfo{
	ComputedRadiographyImageStorage:                   imageClass(ComputedRadiographyImageStorage, "Computed Radiography Image Storage", "CR"),
	DigitalXRayImageStorageForPresentation:            imageClass(DigitalXRayImageStorageForPresentation, "Digital X-Ray Image Storage - For Presentation", "DX"),
	DigitalXRayImageStorageForProcessing:              imageClass(DigitalXRayImageStorageForProcessing, "Digital X-Ray Image Storage - For Processing", "DX"),
	DigitalMammographyXRayImageStorageForPresentation: imageClass(DigitalMammographyXRayImageStorageForPresentation, "Digital Mammography X-Ray Image Storage - For Presentation", "MG"),
	CTImageStorage:                                    imageClass(CTImageStorage, "CT Image Storage", "CT"),
	EnhancedCTImageStorage:                            imageClass(EnhancedCTImageStorage, "Enhanced CT Image Storage", "CT"),
	UltrasoundMultiFrameImageStorage:                  imageClass(UltrasoundMultiFrameImageStorage, "Ultrasound Multi-frame Image Storage", "US"),
	MRImageStorage:                                    imageClass(MRImageStorage, "MR Image Storage", "MR"),
	EnhancedMRImageStorage:                            imageClass(EnhancedMRImageStorage, "Enhanced MR Image Storage", "MR"),
	UltrasoundImageStorage:                            imageClass(UltrasoundImageStorage, "Ultrasound Image Storage", "US"),
	SecondaryCaptureImageStorage:                      imageClass(SecondaryCaptureImageStorage, "Secondary Capture Image Storage", "OT"),
	MultiFrameGrayscaleWordSecondaryCaptureStorage:    imageClass(MultiFrameGrayscaleWordSecondaryCaptureStorage, "Multi-frame Grayscale Word Secondary Capture Image Storage", "OT"),
	MultiFrameTrueColorSecondaryCaptureStorage:        imageClass(MultiFrameTrueColorSecondaryCaptureStorage, "Multi-frame True Color Secondary Capture Image Storage", "OT"),
	XRayAngiographicImageStorage:                      imageClass(XRayAngiographicImageStorage, "X-Ray Angiographic Image Storage", "XA"),
	XRayRadiofluoroscopicImageStorage:                 imageClass(XRayRadiofluoroscopicImageStorage, "X-Ray Radiofluoroscopic Image Storage", "RF"),
	NuclearMedicineImageStorage:                       imageClass(NuclearMedicineImageStorage, "Nuclear Medicine Image Storage", "NM"),
	VLPhotographicImageStorage:                        imageClass(VLPhotographicImageStorage, "VL Photographic Image Storage", "XC"),
	PETImageStorage:                                   imageClass(PETImageStorage, "Positron Emission Tomography Image Storage", "PT"),
	RTImageStorage:                                    imageClass(RTImageStorage, "RT Image Storage", "RTIMAGE"),
	RTDoseStorage:                                     imageClass(RTDoseStorage, "RT Dose Storage", "RTDOSE"),

	EncapsulatedPDFStorage:       {UID: EncapsulatedPDFStorage, Name: "Encapsulated PDF Storage", Modality: "DOC"},
	RTStructureSetStorage:        {UID: RTStructureSetStorage, Name: "RT Structure Set Storage", Modality: "RTSTRUCT"},
	MediaStorageDirectoryStorage: {UID: MediaStorageDirectoryStorage, Name: "Media Storage Directory Storage"},
}
