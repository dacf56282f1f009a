package consts

const (
	// Number of system area sectors.
	ISO9660_SYSTEM_AREA_SECTORS = 16

	// Standard ISO9660 identifier.
	ISO9660_STD_IDENTIFIER = "CD001"

	// ISO9660 volume descriptor version (1 for Primary, 1 or 2 for Supplementary/Enhanced).
	ISO9660_VOLUME_DESC_VERSION = 1

	// ISO9660 default sector/block size.
	ISO9660_SECTOR_SIZE = 2048

	// ISO9660 volume descriptor header size (type + magic + version).
	ISO9660_VOLUME_DESC_HEADER_SIZE = 7

	// ISO9660 application use area size.
	ISO9660_APPLICATION_USE_SIZE = 512

	// JOLIET level 1, 2, and 3 escape sequences (UCS-2 BE).
	JOLIET_LEVEL_1_ESCAPE = "%/@"
	JOLIET_LEVEL_2_ESCAPE = "%/C"
	JOLIET_LEVEL_3_ESCAPE = "%/E"

	// Additional UCS-2 BE escape sequences enumerated by ECMA-119 registration.
	JOLIET_UCS2_ESCAPE_J = "%/J"
	JOLIET_UCS2_ESCAPE_K = "%/K"
	JOLIET_UCS2_ESCAPE_L = "%/L"

	// UTF-8 escape sequences.
	JOLIET_UTF8_ESCAPE_G = "%/G"
	JOLIET_UTF8_ESCAPE_H = "%/H"
	JOLIET_UTF8_ESCAPE_I = "%/I"

	// El Torito bootable cdrom system identifier.
	EL_TORITO_BOOT_SYSTEM_ID = "EL TORITO SPECIFICATION"

	// a-characters set which are specified in the International Reference Version at the following positions.
	//   | 2/0 - 2/2
	//   | 2/5 - 2/15
	//   | 3/0 - 3/15
	//   | 4/1 - 4/15
	//   | 5/0 - 5/10
	//   | 5/15
	A_CHARACTERS = " !\"%&'()*+,-./0123456789:;<=>?ABCDEFGHIJKLMNOPQRSTUVWXYZ_"

	// d-characters: 37 characters in the following positions of the International Reference Version
	// | 3/0 - 3/9
	// | 4/1 - 5/10
	// | 5/15
	D_CHARACTERS = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ_"

	// Separators allowed by ISO9660 0x2E and 0x3B.
	ISO9660_SEPARATOR_1 = "."
	ISO9660_SEPARATOR_2 = ";"

	// ISO9660 Filler 0x20 (space).
	ISO9660_FILLER = " "

	// Volume descriptor type bytes (ECMA-119 8.1-8.5).
	VOLUME_DESC_TYPE_BOOT          = 0
	VOLUME_DESC_TYPE_PRIMARY       = 1
	VOLUME_DESC_TYPE_SUPPLEMENTARY = 2
	VOLUME_DESC_TYPE_PARTITION     = 3
	VOLUME_DESC_TYPE_TERMINATOR    = 255

	// File structure version used by Primary/Supplementary descriptors.
	FILE_STRUCTURE_VERSION_STANDARD = 1

	// File structure version used by Enhanced (version-2 Supplementary) descriptors.
	FILE_STRUCTURE_VERSION_ENHANCED = 2

	// Directory record header size, up to but excluding the identifier bytes.
	DIRECTORY_RECORD_HEADER_SIZE = 33

	// Maximum size of a single directory record.
	DIRECTORY_RECORD_MAX_LENGTH = 255

	// Path table record fixed header size, up to but excluding the identifier bytes.
	PATH_TABLE_RECORD_HEADER_SIZE = 8

	// Extended attribute record fixed prefix size, up to the application-use length field.
	XATTR_RECORD_PREFIX_SIZE = 250

	// Extended attribute record format version.
	XATTR_RECORD_VERSION = 1

	// SUSP entry header size (signature + length + version).
	SUSP_ENTRY_HEADER_SIZE = 4

	// SUSP Sharing Protocol check bytes.
	SUSP_SP_CHECK_BYTE_1 = 0xBE
	SUSP_SP_CHECK_BYTE_2 = 0xEF

	// SUSP continuation entry (CE) on-disc length: sig(2)+len(1)+ver(1)+block(8)+offset(8)+length(8).
	SUSP_CE_ENTRY_LENGTH = 28

	// Rock Ridge default POSIX modes used by the writer.
	DEFAULT_DIR_MODE  = 0o755
	DEFAULT_FILE_MODE = 0o644
)
