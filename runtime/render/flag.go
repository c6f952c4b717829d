package render

// Set mark changed
func (flag *Flag) Set() {
	flag.value.Store(true)
}

// Take clear the mark and return whether it was set
func (flag *Flag) Take() bool {
	return flag.value.Swap(false)
}

// IsSet check the mark without clearing it
func (flag *Flag) IsSet() bool {
	return flag.value.Load()
}
