package pcf8591

const (
	// DefaultAddress is the chip's I2C address with A0..A2 tied to ground.
	DefaultAddress = 0x48

	ctrlAIN0 = 0x40 // select analog input 0
	ctrlAIN1 = 0x41 // select analog input 1
	ctrlAIN2 = 0x42 // select analog input 2
	ctrlAIN3 = 0x43 // select analog input 3

	// ctrlOutput enables the analog output stage; the DAC value follows as
	// the second byte of the transaction.
	ctrlOutput = 0x40
)
