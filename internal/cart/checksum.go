package cart

// CRC16 is the checksum used throughout the cartridge format: CRC-16 with
// the reflected polynomial 0xA001 and initial value 0xFFFF.
func CRC16(data []byte) uint16 {
	crc := uint16(0xFFFF)
	for _, b := range data {
		crc ^= uint16(b)
		for i := 0; i < 8; i++ {
			if crc&1 != 0 {
				crc = crc>>1 ^ 0xA001
			} else {
				crc >>= 1
			}
		}
	}
	return crc
}

// HeaderChecksumOK compares the stored header checksum with the CRC of
// 0x000-0x15D.
func (h *Header) HeaderChecksumOK() bool {
	return CRC16(h.raw[:offHeaderCRC]) == h.HeaderChecksum().Get()
}

// LogoChecksumOK compares the stored logo checksum with the CRC of the logo.
func (h *Header) LogoChecksumOK() bool {
	return CRC16(h.NintendoLogo()) == h.NintendoLogoChecksum().Get()
}
