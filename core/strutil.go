package core

// utoa formats n in decimal without pulling in strconv.
func utoa(n uint32) string {
	var buf [10]byte
	i := len(buf)
	for {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
		if n == 0 {
			break
		}
	}
	return string(buf[i:])
}

const hexDigits = "0123456789ABCDEF"

// hexByte formats b as 0xNN.
func hexByte(b byte) string {
	return string([]byte{'0', 'x', hexDigits[b>>4], hexDigits[b&0x0F]})
}
