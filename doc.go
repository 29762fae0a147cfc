/*
Package datrie is an implementation of a double-array trie with tail
compression, after Jun-ichi Aoe's "An Efficient Digital Search Algorithm by
Using a Double-Array Structure".

A trie maps keys to int32 values. The branching part of every key is kept in
a pair of parallel arrays, base and check, so that following one symbol is a
single addition and comparison. The part of a key that no other key shares
is cut off and kept as a suffix in a separate tail store, which keeps the
double-array small for sparse key sets.

Keys of a Trie are byte strings over the symbols 1..255; symbol 0 terminates
keys internally and may not appear in them. A TextTrie accepts Go strings and
maps their characters to symbols through an AlphaMap, a list of character
ranges. Create one with New or NewText, then Store, Retrieve and Delete keys.
Enumerate, All and Iterator list the keys, and State walks the trie one
symbol at a time, which is how prefix queries are answered.

A trie can be written to any io.Writer with WriteTo and read back with Read,
or kept in a directory with Open, Save and Close, which use the files
NAME.br for the double-array, NAME.tl for the tail and NAME.sbm for the
alphabet of a TextTrie. A summary of the data format is found at the top of
disk.go.

	trie := datrie.NewText(datrie.ASCII())
	trie.Store("hello", 1)
	trie.Store("help", 2)
	for _, key := range trie.Children("hel") {
		fmt.Println(key)
	}
*/
package datrie
