package dump

import (
	"github.com/FabianRolfMatthiasNoll/ndsfs/internal/cart"
	"github.com/FabianRolfMatthiasNoll/ndsfs/internal/nitrofs"
	"github.com/FabianRolfMatthiasNoll/ndsfs/internal/raw"
)

type CodeDoc struct {
	ROMOffset    Hex32 `yaml:"rom_offset" json:"rom_offset" cbor:"rom_offset"`
	EntryAddress Hex32 `yaml:"entry_address" json:"entry_address" cbor:"entry_address"`
	RAMAddress   Hex32 `yaml:"ram_address" json:"ram_address" cbor:"ram_address"`
	Size         Hex32 `yaml:"size" json:"size" cbor:"size"`
}

type TableDoc struct {
	Offset Hex32 `yaml:"offset" json:"offset" cbor:"offset"`
	Size   Hex32 `yaml:"size" json:"size" cbor:"size"`
}

// HeaderDoc is every header field, decoded where a decoding exists.
type HeaderDoc struct {
	Title              Text     `yaml:"title" json:"title" cbor:"title"`
	GameCode           Text     `yaml:"game_code" json:"game_code" cbor:"game_code"`
	MakerCode          Text     `yaml:"maker_code" json:"maker_code" cbor:"maker_code"`
	UnitCode           uint8    `yaml:"unit_code" json:"unit_code" cbor:"unit_code"`
	Unit               string   `yaml:"unit" json:"unit" cbor:"unit"`
	SeedSelect         uint8    `yaml:"encryption_seed_select" json:"encryption_seed_select" cbor:"encryption_seed_select"`
	DeviceCapacityRaw  uint8    `yaml:"device_capacity_raw" json:"device_capacity_raw" cbor:"device_capacity_raw"`
	DeviceCapacity     uint64   `yaml:"device_capacity" json:"device_capacity" cbor:"device_capacity"`
	Region             string   `yaml:"region" json:"region" cbor:"region"`
	ROMVersion         uint8    `yaml:"rom_version" json:"rom_version" cbor:"rom_version"`
	Autostart          uint8    `yaml:"autostart" json:"autostart" cbor:"autostart"`
	ARM9               CodeDoc  `yaml:"arm9" json:"arm9" cbor:"arm9"`
	ARM7               CodeDoc  `yaml:"arm7" json:"arm7" cbor:"arm7"`
	FNT                TableDoc `yaml:"fnt" json:"fnt" cbor:"fnt"`
	FAT                TableDoc `yaml:"fat" json:"fat" cbor:"fat"`
	ARM9Overlay        TableDoc `yaml:"arm9_overlay" json:"arm9_overlay" cbor:"arm9_overlay"`
	ARM7Overlay        TableDoc `yaml:"arm7_overlay" json:"arm7_overlay" cbor:"arm7_overlay"`
	PortNormal         Hex32    `yaml:"port_normal" json:"port_normal" cbor:"port_normal"`
	PortKey1           Hex32    `yaml:"port_key1" json:"port_key1" cbor:"port_key1"`
	BannerOffset       Hex32    `yaml:"banner_offset" json:"banner_offset" cbor:"banner_offset"`
	SecureAreaChecksum Hex16    `yaml:"secure_area_checksum" json:"secure_area_checksum" cbor:"secure_area_checksum"`
	SecureAreaDelay    uint16   `yaml:"secure_area_delay" json:"secure_area_delay" cbor:"secure_area_delay"`
	ARM9AutoLoad       Hex32    `yaml:"arm9_autoload" json:"arm9_autoload" cbor:"arm9_autoload"`
	ARM7AutoLoad       Hex32    `yaml:"arm7_autoload" json:"arm7_autoload" cbor:"arm7_autoload"`
	SecureAreaDisable  Bytes    `yaml:"secure_area_disable" json:"secure_area_disable" cbor:"secure_area_disable"`
	TotalUsedROMSize   Hex32    `yaml:"total_used_rom_size" json:"total_used_rom_size" cbor:"total_used_rom_size"`
	ROMHeaderSize      Hex32    `yaml:"rom_header_size" json:"rom_header_size" cbor:"rom_header_size"`
	NANDEndOfROM       uint16   `yaml:"nand_end_of_rom" json:"nand_end_of_rom" cbor:"nand_end_of_rom"`
	NANDStartOfRW      uint16   `yaml:"nand_start_of_rw" json:"nand_start_of_rw" cbor:"nand_start_of_rw"`
	LogoChecksum       Hex16    `yaml:"logo_checksum" json:"logo_checksum" cbor:"logo_checksum"`
	LogoChecksumOK     bool     `yaml:"logo_checksum_ok" json:"logo_checksum_ok" cbor:"logo_checksum_ok"`
	HeaderChecksum     Hex16    `yaml:"header_checksum" json:"header_checksum" cbor:"header_checksum"`
	HeaderChecksumOK   bool     `yaml:"header_checksum_ok" json:"header_checksum_ok" cbor:"header_checksum_ok"`
	Debug              TableDoc `yaml:"debug" json:"debug" cbor:"debug"`
	DebugRAMAddress    Hex32    `yaml:"debug_ram_address" json:"debug_ram_address" cbor:"debug_ram_address"`
}

func codeDoc(c cart.CodeInfo) CodeDoc {
	return CodeDoc{
		ROMOffset:    Hex32(c.ROMOffset.Get()),
		EntryAddress: Hex32(c.EntryAddress.Get()),
		RAMAddress:   Hex32(c.RAMAddress.Get()),
		Size:         Hex32(c.Size.Get()),
	}
}

func tableDoc(t cart.OffsetAndSize) TableDoc {
	return TableDoc{Offset: Hex32(t.Offset.Get()), Size: Hex32(t.Size.Get())}
}

func text(s raw.EmbeddedString) Text { return Text(s.Data()) }

// Header builds the header document.
func Header(h *cart.Header) HeaderDoc {
	return HeaderDoc{
		Title:              text(h.Title()),
		GameCode:           text(h.GameCode()),
		MakerCode:          text(h.MakerCode()),
		UnitCode:           h.UnitCode(),
		Unit:               h.UnitName(),
		SeedSelect:         h.EncryptionSeedSelect(),
		DeviceCapacityRaw:  h.DeviceCapacityRaw(),
		DeviceCapacity:     h.DeviceCapacity(),
		Region:             h.RegionName(),
		ROMVersion:         h.ROMVersion(),
		Autostart:          h.Autostart(),
		ARM9:               codeDoc(h.ARM9()),
		ARM7:               codeDoc(h.ARM7()),
		FNT:                tableDoc(h.FNT()),
		FAT:                tableDoc(h.FAT()),
		ARM9Overlay:        tableDoc(h.ARM9Overlay()),
		ARM7Overlay:        tableDoc(h.ARM7Overlay()),
		PortNormal:         Hex32(h.PortNormal().Get()),
		PortKey1:           Hex32(h.PortKey1().Get()),
		BannerOffset:       Hex32(h.BannerOffset().Get()),
		SecureAreaChecksum: Hex16(h.SecureAreaChecksum().Get()),
		SecureAreaDelay:    h.SecureAreaDelay().Get(),
		ARM9AutoLoad:       Hex32(h.ARM9AutoLoad().Get()),
		ARM7AutoLoad:       Hex32(h.ARM7AutoLoad().Get()),
		SecureAreaDisable:  Bytes(h.SecureAreaDisable()),
		TotalUsedROMSize:   Hex32(h.TotalUsedROMSize().Get()),
		ROMHeaderSize:      Hex32(h.ROMHeaderSize().Get()),
		NANDEndOfROM:       h.NANDEndOfROM().Get(),
		NANDStartOfRW:      h.NANDStartOfRW().Get(),
		LogoChecksum:       Hex16(h.NintendoLogoChecksum().Get()),
		LogoChecksumOK:     h.LogoChecksumOK(),
		HeaderChecksum:     Hex16(h.HeaderChecksum().Get()),
		HeaderChecksumOK:   h.HeaderChecksumOK(),
		Debug:              tableDoc(h.Debug()),
		DebugRAMAddress:    Hex32(h.DebugRAMAddress().Get()),
	}
}

type EntryDoc struct {
	Name      Text   `yaml:"name" json:"name" cbor:"name"`
	Directory bool   `yaml:"directory,omitempty" json:"directory,omitempty" cbor:"directory,omitempty"`
	ID        uint16 `yaml:"id" json:"id" cbor:"id"`
}

type DirDoc struct {
	ID             Hex16      `yaml:"id" json:"id" cbor:"id"`
	SubTableOffset Hex32      `yaml:"sub_table_offset" json:"sub_table_offset" cbor:"sub_table_offset"`
	FirstFileID    uint16     `yaml:"first_file_id" json:"first_file_id" cbor:"first_file_id"`
	TotalOrParent  uint16     `yaml:"total_or_parent" json:"total_or_parent" cbor:"total_or_parent"`
	Entries        []EntryDoc `yaml:"entries" json:"entries" cbor:"entries"`
}

// FNTDoc is the name table as stored: one record per directory with its
// sub-table entries. File entries carry the file ID they are assigned.
type FNTDoc struct {
	Directories []DirDoc `yaml:"directories" json:"directories" cbor:"directories"`
}

// FNT builds the name table document.
func FNT(t *nitrofs.FileNameTable) FNTDoc {
	doc := FNTDoc{Directories: make([]DirDoc, 0, len(t.MainTable))}
	for i, dir := range t.MainTable {
		d := DirDoc{
			ID:             Hex16(nitrofs.FirstDirectoryID + i),
			SubTableOffset: Hex32(dir.SubTableOffset.Get()),
			FirstFileID:    dir.FirstFileID.Get(),
			TotalOrParent:  dir.TotalOrParent.Get(),
			Entries:        make([]EntryDoc, 0, len(t.SubTables[i])),
		}
		fileID := d.FirstFileID
		for _, entry := range t.SubTables[i] {
			switch e := entry.(type) {
			case nitrofs.FileEntry:
				d.Entries = append(d.Entries, EntryDoc{Name: text(e.Name), ID: fileID})
				fileID++
			case nitrofs.DirectoryEntry:
				d.Entries = append(d.Entries, EntryDoc{Name: text(e.Name), Directory: true, ID: e.ID.Get()})
			}
		}
		doc.Directories = append(doc.Directories, d)
	}
	return doc
}

type FATEntryDoc struct {
	ID    int    `yaml:"id" json:"id" cbor:"id"`
	Start Hex32  `yaml:"start" json:"start" cbor:"start"`
	End   Hex32  `yaml:"end" json:"end" cbor:"end"`
	Size  uint32 `yaml:"size" json:"size" cbor:"size"`
}

type FATDoc struct {
	Entries []FATEntryDoc `yaml:"entries" json:"entries" cbor:"entries"`
}

// FAT builds the allocation table document.
func FAT(f nitrofs.FAT) FATDoc {
	doc := FATDoc{Entries: make([]FATEntryDoc, 0, f.Len())}
	for id, e := range f.All() {
		doc.Entries = append(doc.Entries, FATEntryDoc{
			ID:    id,
			Start: Hex32(e.Start.Get()),
			End:   Hex32(e.End.Get()),
			Size:  e.Size(),
		})
	}
	return doc
}

// ImageDoc holds all three documents, for writing them as one.
type ImageDoc struct {
	Header HeaderDoc `yaml:"header" json:"header" cbor:"header"`
	FNT    FNTDoc    `yaml:"fnt" json:"fnt" cbor:"fnt"`
	FAT    FATDoc    `yaml:"fat" json:"fat" cbor:"fat"`
}

// Image builds the combined document.
func Image(h *cart.Header, files *nitrofs.Files) ImageDoc {
	return ImageDoc{Header: Header(h), FNT: FNT(files.FNT), FAT: FAT(files.FAT)}
}
