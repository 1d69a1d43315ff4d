/*
Package ngram provides fixed-order n-gram language models built from
pre-tokenized corpora, along with temperature-controlled stochastic
prediction and sequence generation on top of them.

Models are plain maximum-likelihood frequency tables: no smoothing, no
discounting, and no mutation after construction, so a built Model may be
shared freely across concurrent readers. All randomness flows through a
Sampler, whose random source can be seeded for reproducible output.
*/
package ngram
