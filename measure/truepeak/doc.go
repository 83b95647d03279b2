// Package truepeak estimates inter-sample peaks per ITU-R BS.1770 Annex 2.
//
// Digital-to-analog reconstruction can overshoot the stored sample values
// between sample positions. The detector upsamples by 4x with a 48-tap
// polyphase interpolator (windowed sinc, Kaiser beta = 5) and reports the
// largest absolute value across the interpolated streams, in linear
// amplitude and in dBTP with a -120 dB floor for silence.
package truepeak
