// Package vision holds the image-side stages of ECG digitization: decoding,
// grid suppression, fixed-layout lead segmentation and ink trace
// reconstruction.
//
// All buffers are gocv Mats. A function that returns a Mat hands ownership to
// the caller, who must Close it. Lead images are regions of their parent and
// must be closed before the parent is.
package vision
