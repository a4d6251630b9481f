package vm

import (
	"bufio"
	"encoding/binary"
	goIO "io"
	"os"
)

// loadImage reads a big-endian image: the first word is the origin, the
// rest are placed in memory starting there. At most the words that fit
// between origin and the end of memory are read, and memory is only written
// once that read succeeds.
func (vm *VM) loadImage(r goIO.Reader) error {
	var header [2]byte
	if _, err := goIO.ReadFull(r, header[:]); err != nil {
		if err == goIO.EOF || err == goIO.ErrUnexpectedEOF {
			return ErrImageHeader
		}
		return err
	}
	origin := binary.BigEndian.Uint16(header[:])
	log := vm.Log.WithField("origin", origin)

	room := int64(MemorySize-int(origin)) * 2
	body, err := goIO.ReadAll(goIO.LimitReader(r, room))
	if err != nil {
		return err
	}

	if int64(len(body)) == room {
		var more [1]byte
		if n, _ := r.Read(more[:]); n > 0 {
			log.Warn("image truncated at end of memory, dropping the rest")
		}
	}
	if len(body)%2 != 0 {
		log.Warn("image ends in a partial word, dropping the stray byte")
	}

	count := len(body) / 2
	for i := 0; i < count; i++ {
		vm.cpu.memory.poke(origin+word(i), binary.BigEndian.Uint16(body[i*2:]))
	}

	log.Infof("loaded %d words", count)
	return nil
}

// Load places the image read from r into memory.
func (vm *VM) Load(r goIO.Reader) error {
	if err := vm.loadImage(r); err != nil {
		return &ErrImageLoad{Err: err}
	}
	return nil
}

// LoadFile places the image stored at path into memory.
func (vm *VM) LoadFile(path string) error {
	file, err := os.Open(path)
	if err != nil {
		return &ErrImageLoad{Path: path, Err: err}
	}
	defer file.Close()

	if err := vm.loadImage(bufio.NewReader(file)); err != nil {
		return &ErrImageLoad{Path: path, Err: err}
	}
	return nil
}
