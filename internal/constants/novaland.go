package constants

// Gas limits for the registry's write calls. The register call carries
// several dynamic arrays, so its limit is far above the purchase call's.
const (
	RegisterGasLimit uint64 = 4_000_000
	DelistGasLimit   uint64 = 300_000
	PurchaseGasLimit uint64 = 300_000
)

// DefaultPinataGateway is the retrieval URL prefix for pinned content when
// no custom gateway is configured.
const DefaultPinataGateway = "https://gateway.pinata.cloud/ipfs/"

// DefaultPinataEndpoint is the pin endpoint of the Pinata API.
const DefaultPinataEndpoint = "https://api.pinata.cloud/pinning/pinFileToIPFS"

// NovalandABI is the ABI of the deployed Novaland property registry. The
// argument order of AddProperty and the component order of the Property
// tuple are load-bearing: the contract has no field names at the call
// boundary, so any reordering silently corrupts listings.
const NovalandABI = `[
  {
    "inputs": [],
    "name": "propertyIndex",
    "outputs": [{"internalType": "uint256", "name": "", "type": "uint256"}],
    "stateMutability": "view",
    "type": "function"
  },
  {
    "inputs": [],
    "name": "FetchProperties",
    "outputs": [
      {
        "components": [
          {"internalType": "uint256", "name": "productID", "type": "uint256"},
          {"internalType": "address", "name": "owner", "type": "address"},
          {"internalType": "uint256", "name": "price", "type": "uint256"},
          {"internalType": "string", "name": "propertyTitle", "type": "string"},
          {"internalType": "string", "name": "category", "type": "string"},
          {"internalType": "string[]", "name": "images", "type": "string[]"},
          {"internalType": "string[]", "name": "location", "type": "string[]"},
          {"internalType": "string[]", "name": "documents", "type": "string[]"},
          {"internalType": "string", "name": "description", "type": "string"},
          {"internalType": "string", "name": "nftId", "type": "string"},
          {"internalType": "bool", "name": "isListed", "type": "bool"}
        ],
        "internalType": "struct Novaland.Property[]",
        "name": "",
        "type": "tuple[]"
      }
    ],
    "stateMutability": "view",
    "type": "function"
  },
  {
    "inputs": [
      {"internalType": "address", "name": "owner", "type": "address"},
      {"internalType": "uint256", "name": "price", "type": "uint256"},
      {"internalType": "string", "name": "_propertyTitle", "type": "string"},
      {"internalType": "string", "name": "_category", "type": "string"},
      {"internalType": "string[]", "name": "_images", "type": "string[]"},
      {"internalType": "string[]", "name": "_location", "type": "string[]"},
      {"internalType": "string[]", "name": "_documents", "type": "string[]"},
      {"internalType": "string", "name": "_description", "type": "string"},
      {"internalType": "string", "name": "_nftId", "type": "string"}
    ],
    "name": "AddProperty",
    "outputs": [],
    "stateMutability": "nonpayable",
    "type": "function"
  },
  {
    "inputs": [{"internalType": "uint256", "name": "productId", "type": "uint256"}],
    "name": "DelistProperty",
    "outputs": [],
    "stateMutability": "nonpayable",
    "type": "function"
  },
  {
    "inputs": [{"internalType": "uint256", "name": "productId", "type": "uint256"}],
    "name": "PurchaseProperty",
    "outputs": [],
    "stateMutability": "payable",
    "type": "function"
  }
]`
